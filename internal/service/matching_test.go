package service

import (
	"testing"
	"time"

	"lifeline/internal/domain"
	"lifeline/internal/models"
	"lifeline/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nopPersister satisfies store.Persister for in-memory service tests.
type nopPersister struct{}

func (nopPersister) Create(string, interface{}) error { return nil }
func (nopPersister) Patch(string, string, map[string]interface{}, map[string]interface{}) error {
	return nil
}
func (nopPersister) Delete(string, string) error { return nil }

func newServiceStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(nopPersister{}, store.Options{Debounce: time.Millisecond})
	t.Cleanup(s.Close)
	return s
}

func coords(lat, lng float64) *models.Coordinates {
	return &models.Coordinates{Lat: lat, Lng: lng}
}

func TestEligibleDonorsFilter(t *testing.T) {
	st := newServiceStore(t)
	now := time.Now()
	past := now.AddDate(0, 0, -120)

	match := st.AddDonor(models.Donor{
		Name: "Asha", BloodGroup: "O+", Status: domain.DonorActive,
		Location: coords(0, 0),
	})
	st.AddDonor(models.Donor{ // wrong group
		Name: "Binu", BloodGroup: "A+", Status: domain.DonorActive,
		Location: coords(0, 0),
	})
	st.AddDonor(models.Donor{ // inactive
		Name: "Chitra", BloodGroup: "O+", Status: domain.DonorInactive,
		Location: coords(0, 0), LastDonationApproved: &now,
	})
	cooling := now.Add(-24 * time.Hour)
	st.AddDonor(models.Donor{ // active but mid-cooldown
		Name: "Deepak", BloodGroup: "O+", Status: domain.DonorActive,
		Location: coords(0, 0), LastDonationApproved: &cooling,
	})
	st.AddDonor(models.Donor{ // no location on file
		Name: "Esha", BloodGroup: "O+", Status: domain.DonorActive,
		LastDonationApproved: &past,
	})
	st.AddDonor(models.Donor{ // ~111 km north, outside the 15 km radius
		Name: "Farhan", BloodGroup: "O+", Status: domain.DonorActive,
		Location: coords(1, 0),
	})

	m := NewMatchingService(st)
	hospital := models.Coordinates{Lat: 0, Lng: 0.001}

	got := m.EligibleDonors("O+", hospital, now)
	require.Len(t, got, 1)
	assert.Equal(t, match.ID, got[0].ID)
}

func TestEligibleDonorsAnyGroup(t *testing.T) {
	st := newServiceStore(t)
	now := time.Now()
	st.AddDonor(models.Donor{Name: "Asha", BloodGroup: "O+", Status: domain.DonorActive, Location: coords(0, 0)})
	st.AddDonor(models.Donor{Name: "Binu", BloodGroup: "A+", Status: domain.DonorActive, Location: coords(0, 0)})

	m := NewMatchingService(st)
	got := m.EligibleDonors(domain.BloodGroupAny, models.Coordinates{Lat: 0, Lng: 0}, now)
	assert.Len(t, got, 2, "request group Any matches every group")
}

func TestEligibleRadiusMonotonic(t *testing.T) {
	now := time.Now()
	d := models.Donor{
		Name: "Asha", BloodGroup: "O+", Status: domain.DonorActive,
		Location: coords(0.1, 0), // ~11.1 km from origin
	}
	origin := models.Coordinates{}

	assert.False(t, eligible(&d, "O+", origin, 5, now))
	assert.True(t, eligible(&d, "O+", origin, 15, now))
	assert.True(t, eligible(&d, "O+", origin, 50, now),
		"widening the radius never drops a donor")
}

func TestReactivateExpired(t *testing.T) {
	st := newServiceStore(t)
	now := time.Now()
	elapsed := now.AddDate(0, 0, -(domain.CooldownDays + 1))
	fresh := now.Add(-24 * time.Hour)

	done := st.AddDonor(models.Donor{
		Name: "Asha", BloodGroup: "O+", Status: domain.DonorInactive,
		LastDonationApproved: &elapsed,
	})
	waiting := st.AddDonor(models.Donor{
		Name: "Binu", BloodGroup: "O+", Status: domain.DonorInactive,
		LastDonationApproved: &fresh,
	})
	manual := st.AddDonor(models.Donor{ // inactive by choice, no donation on record
		Name: "Chitra", BloodGroup: "O+", Status: domain.DonorInactive,
	})

	NewMatchingService(st).ReactivateExpired(now)

	got, _ := st.DonorByID(done.ID)
	assert.Equal(t, domain.DonorActive, got.Status)
	got, _ = st.DonorByID(waiting.ID)
	assert.Equal(t, domain.DonorInactive, got.Status)
	got, _ = st.DonorByID(manual.ID)
	assert.Equal(t, domain.DonorInactive, got.Status, "self-set unavailability is not auto-reverted")
}

func TestEligibleDonorsWithDistanceSorted(t *testing.T) {
	st := newServiceStore(t)
	now := time.Now()
	far := st.AddDonor(models.Donor{Name: "Far", BloodGroup: "O+", Status: domain.DonorActive, Location: coords(0.05, 0)})
	near := st.AddDonor(models.Donor{Name: "Near", BloodGroup: "O+", Status: domain.DonorActive, Location: coords(0.01, 0)})

	got := NewMatchingService(st).EligibleDonorsWithDistance("O+", models.Coordinates{}, now)
	require.Len(t, got, 2)
	assert.Equal(t, near.ID, got[0].ID)
	assert.Equal(t, far.ID, got[1].ID)
	assert.Less(t, got[0].DistanceKm, got[1].DistanceKm)
	assert.NotEmpty(t, got[0].Proximity)
}

func TestVisibleRequests(t *testing.T) {
	st := newServiceStore(t)
	now := time.Now()
	donor := st.AddDonor(models.Donor{
		Name: "Asha", BloodGroup: "O+", Status: domain.DonorActive,
		Location: coords(0, 0),
	})

	inRadius := st.AddRequest(models.BloodRequest{
		HospitalID: "h1", BloodGroup: "O+", Status: domain.RequestStatusPending,
		HospitalLocation: models.Coordinates{Lat: 0, Lng: 0.001}, CreatedAt: now,
	})
	st.AddRequest(models.BloodRequest{ // wrong group
		HospitalID: "h1", BloodGroup: "A+", Status: domain.RequestStatusPending,
		HospitalLocation: models.Coordinates{}, CreatedAt: now,
	})
	st.AddRequest(models.BloodRequest{ // out of radius
		HospitalID: "h1", BloodGroup: "O+", Status: domain.RequestStatusPending,
		HospitalLocation: models.Coordinates{Lat: 1, Lng: 0}, CreatedAt: now,
	})
	declined := st.AddRequest(models.BloodRequest{
		HospitalID: "h1", BloodGroup: "O+", Status: domain.RequestStatusPending,
		HospitalLocation: models.Coordinates{}, CreatedAt: now,
	})
	st.AddRejection(models.Rejection{RequestID: declined.ID, DonorID: donor.ID, CreatedAt: now})

	// Accepted by this donor, then the donor moved out of radius: still visible.
	mine := st.AddRequest(models.BloodRequest{
		HospitalID: "h2", BloodGroup: "O+", Status: domain.RequestStatusAccepted,
		DonorID: donor.ID, HospitalLocation: models.Coordinates{Lat: 2, Lng: 2},
		CreatedAt: now.Add(time.Minute),
	})

	got := NewMatchingService(st).VisibleRequests(donor, now)
	require.Len(t, got, 2)
	assert.Equal(t, mine.ID, got[0].ID, "newest first")
	assert.Equal(t, inRadius.ID, got[1].ID)
}

func TestVisibleRequestsNoDonorLocation(t *testing.T) {
	st := newServiceStore(t)
	now := time.Now()
	donor := st.AddDonor(models.Donor{Name: "Asha", BloodGroup: "O+", Status: domain.DonorActive})
	st.AddRequest(models.BloodRequest{
		HospitalID: "h1", BloodGroup: "O+", Status: domain.RequestStatusPending,
		HospitalLocation: models.Coordinates{Lat: 3, Lng: 3}, CreatedAt: now,
	})

	got := NewMatchingService(st).VisibleRequests(donor, now)
	assert.Len(t, got, 1, "without a donor location the radius check is skipped")
}
