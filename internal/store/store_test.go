package store

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"lifeline/internal/domain"
	"lifeline/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedOp struct {
	kind       string
	collection string
	id         string
	fields     map[string]interface{}
	guard      map[string]interface{}
}

// fakePersister records ops and optionally fails every write.
type fakePersister struct {
	mu   sync.Mutex
	ops  []recordedOp
	fail error
}

func (f *fakePersister) Create(collection string, record interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var id string
	switch r := record.(type) {
	case models.Donor:
		id = r.ID
	case models.Hospital:
		id = r.ID
	case models.BloodRequest:
		id = r.ID
	case models.Donation:
		id = r.ID
	case models.Notification:
		id = r.ID
	case models.Rejection:
		id = r.ID
	}
	f.ops = append(f.ops, recordedOp{kind: "create", collection: collection, id: id})
	return f.fail
}

func (f *fakePersister) Patch(collection, id string, fields, guard map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, recordedOp{kind: "patch", collection: collection, id: id, fields: fields, guard: guard})
	return f.fail
}

func (f *fakePersister) Delete(collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, recordedOp{kind: "delete", collection: collection, id: id})
	return f.fail
}

func (f *fakePersister) recorded() []recordedOp {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedOp(nil), f.ops...)
}

func newTestStore(t *testing.T) (*Store, *fakePersister) {
	t.Helper()
	fp := &fakePersister{}
	s := New(fp, Options{Debounce: 2 * time.Millisecond})
	return s, fp
}

func TestAddDonorOptimistic(t *testing.T) {
	s, fp := newTestStore(t)
	d := s.AddDonor(models.Donor{Name: "Asha", BloodGroup: "O+", Status: domain.DonorActive})
	require.NotEmpty(t, d.ID, "store assigns the id")

	// Visible synchronously, before the durable write happens.
	got, ok := s.DonorByID(d.ID)
	require.True(t, ok)
	assert.Equal(t, "Asha", got.Name)

	s.Close()
	ops := fp.recorded()
	require.Len(t, ops, 1)
	assert.Equal(t, "create", ops[0].kind)
	assert.Equal(t, CollectionDonors, ops[0].collection)
	assert.Equal(t, d.ID, ops[0].id)
}

func TestUpdateDonorMergesLocally(t *testing.T) {
	s, fp := newTestStore(t)
	d := s.AddDonor(models.Donor{Name: "Asha", BloodGroup: "O+", Status: domain.DonorActive})

	inactive := domain.DonorInactive
	count := 3
	s.UpdateDonor(d.ID, DonorPatch{Status: &inactive, DonationCount: &count})

	got, _ := s.DonorByID(d.ID)
	assert.Equal(t, domain.DonorInactive, got.Status)
	assert.Equal(t, 3, got.DonationCount)
	assert.Equal(t, "Asha", got.Name, "untouched fields survive the merge")

	s.Close()
	ops := fp.recorded()
	require.Len(t, ops, 2)
	assert.Equal(t, "patch", ops[1].kind)
	assert.Equal(t, map[string]interface{}{"status": "inactive", "donation_count": 3}, ops[1].fields)
}

func TestUpdateUnknownIDStillPersists(t *testing.T) {
	s, fp := newTestStore(t)
	active := domain.DonorActive
	s.UpdateDonor("missing", DonorPatch{Status: &active})

	_, ok := s.DonorByID("missing")
	assert.False(t, ok, "local cache untouched")

	s.Close()
	ops := fp.recorded()
	require.Len(t, ops, 1, "remote patch still attempted despite cache miss")
	assert.Equal(t, "patch", ops[0].kind)
	assert.Equal(t, "missing", ops[0].id)
}

func TestPersistFailureDoesNotSurface(t *testing.T) {
	fp := &fakePersister{fail: errors.New("backend down")}
	s := New(fp, Options{Debounce: 2 * time.Millisecond})

	d := s.AddDonor(models.Donor{Name: "Asha", BloodGroup: "O+"})
	got, ok := s.DonorByID(d.ID)
	require.True(t, ok, "optimistic state survives a failed persist")
	assert.Equal(t, "Asha", got.Name)
	s.Close()
}

func TestSubscribeCoalesces(t *testing.T) {
	s, _ := newTestStore(t)
	defer s.Close()

	var calls int32
	unsub := s.Subscribe(func() { atomic.AddInt32(&calls, 1) })

	// A burst of writes inside one debounce window.
	for i := 0; i < 5; i++ {
		s.AddDonor(models.Donor{Name: "D", BloodGroup: "A+"})
	}
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 1 },
		time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "five writes, one notification")

	unsub()
	s.AddDonor(models.Donor{Name: "E", BloodGroup: "B+"})
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "no callbacks after unsubscribe")
}

func TestAcceptRequestCAS(t *testing.T) {
	s, fp := newTestStore(t)
	req := s.AddRequest(models.BloodRequest{
		HospitalID: "h1",
		BloodGroup: "O+",
		Units:      2,
		Status:     domain.RequestStatusPending,
		CreatedAt:  time.Now(),
	})

	accepted, err := s.AcceptRequest(req.ID, "d1", "Asha", time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusAccepted, accepted.Status)
	assert.Equal(t, "d1", accepted.DonorID)
	assert.Equal(t, "Asha", accepted.AcceptedBy)
	require.NotNil(t, accepted.AcceptedAt)

	// Second donor loses the race.
	_, err = s.AcceptRequest(req.ID, "d2", "Binu", time.Now())
	assert.ErrorIs(t, err, domain.ErrRequestNotPending)

	got, _ := s.RequestByID(req.ID)
	assert.Equal(t, "d1", got.DonorID, "loser did not steal the request")

	assert.Equal(t, []string{req.ID}, s.AcceptedRequestIDs("d1"))

	s.Close()
	var patch *recordedOp
	for _, op := range fp.recorded() {
		if op.kind == "patch" {
			op := op
			patch = &op
			break
		}
	}
	require.NotNil(t, patch)
	assert.Equal(t, map[string]interface{}{"status": domain.RequestStatusPending}, patch.guard,
		"durable accept is conditional on the request still being pending")
}

func TestCompleteRequestGuard(t *testing.T) {
	s, _ := newTestStore(t)
	defer s.Close()
	req := s.AddRequest(models.BloodRequest{
		HospitalID: "h1",
		BloodGroup: "O+",
		Status:     domain.RequestStatusPending,
		CreatedAt:  time.Now(),
	})

	_, err := s.CompleteRequest(req.ID, "DON-1", time.Now())
	assert.ErrorIs(t, err, domain.ErrRequestNotAccepted, "pending request cannot be completed")

	_, err = s.AcceptRequest(req.ID, "d1", "Asha", time.Now())
	require.NoError(t, err)

	done, err := s.CompleteRequest(req.ID, "DON-1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusCompleted, done.Status)
	assert.True(t, done.DonationApproved)
	assert.Equal(t, "DON-1", done.DonationNumber)
	require.NotNil(t, done.ApprovedAt)
}

func TestDeleteRequestCleansIndexes(t *testing.T) {
	s, fp := newTestStore(t)
	req := s.AddRequest(models.BloodRequest{
		HospitalID: "h1",
		BloodGroup: "O+",
		Status:     domain.RequestStatusPending,
		CreatedAt:  time.Now(),
	})
	_, err := s.AcceptRequest(req.ID, "d1", "Asha", time.Now())
	require.NoError(t, err)

	_, err = s.DeleteRequest(req.ID)
	require.NoError(t, err)

	_, ok := s.RequestByID(req.ID)
	assert.False(t, ok)
	assert.Empty(t, s.RequestsByHospital("h1"))
	assert.Empty(t, s.AcceptedRequestIDs("d1"))

	_, err = s.DeleteRequest(req.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	s.Close()
	ops := fp.recorded()
	last := ops[len(ops)-1]
	assert.Equal(t, "delete", last.kind)
	assert.Equal(t, CollectionRequests, last.collection)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	s, fp := newTestStore(t)
	s.AddNotification(models.Notification{DonorID: "d1", Message: "a", CreatedAt: time.Now()})
	s.AddNotification(models.Notification{DonorID: "d1", Message: "b", CreatedAt: time.Now()})
	s.AddNotification(models.Notification{DonorID: "d2", Message: "c", CreatedAt: time.Now()})

	s.MarkAllNotificationsRead("d1")

	for _, n := range s.NotificationsForDonor("d1") {
		assert.True(t, n.Read)
	}
	for _, n := range s.NotificationsForDonor("d2") {
		assert.False(t, n.Read)
	}

	s.Close()
	patches := 0
	for _, op := range fp.recorded() {
		if op.kind == "patch" && op.collection == CollectionNotifications {
			patches++
			assert.Equal(t, map[string]interface{}{"read": true}, op.fields)
		}
	}
	assert.Equal(t, 2, patches)
}

func TestNotificationDeliveryTarget(t *testing.T) {
	s, _ := newTestStore(t)
	defer s.Close()

	// Hospital-targeted record that also names the acting donor.
	s.AddNotification(models.Notification{
		Type: domain.NotifDonorAccepted, HospitalID: "h1", DonorID: "d1",
		Message: "accepted", CreatedAt: time.Now(),
	})
	s.AddNotification(models.Notification{
		Type: domain.NotifDonationApproved, DonorID: "d1",
		Message: "approved", CreatedAt: time.Now(),
	})

	donorFeed := s.NotificationsForDonor("d1")
	require.Len(t, donorFeed, 1, "hospital-targeted records stay out of the donor feed")
	assert.Equal(t, domain.NotifDonationApproved, donorFeed[0].Type)

	hospFeed := s.NotificationsForHospital("h1")
	require.Len(t, hospFeed, 1)
	assert.Equal(t, domain.NotifDonorAccepted, hospFeed[0].Type)

	s.MarkAllNotificationsRead("d1")
	assert.True(t, s.NotificationsForDonor("d1")[0].Read)
	assert.False(t, s.NotificationsForHospital("h1")[0].Read,
		"a donor read-all never touches the hospital's records")
}

func TestApplySnapshotRebuildsIndexes(t *testing.T) {
	s, _ := newTestStore(t)
	defer s.Close()
	s.ApplySnapshot(Snapshot{
		Donors: []models.Donor{{ID: "d1", Name: "Asha", BloodGroup: "O+"}},
		Requests: []models.BloodRequest{
			{ID: "r1", HospitalID: "h1", DonorID: "d1", Status: domain.RequestStatusAccepted},
			{ID: "r2", HospitalID: "h1", Status: domain.RequestStatusPending},
		},
	})
	assert.Len(t, s.RequestsByHospital("h1"), 2)
	assert.Equal(t, []string{"r1"}, s.AcceptedRequestIDs("d1"))
}
