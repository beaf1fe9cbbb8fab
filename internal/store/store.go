package store

import (
	"log"
	"strings"
	"sync"
	"time"

	"lifeline/internal/domain"
	"lifeline/internal/models"

	"github.com/google/uuid"
)

// Store is the sole gateway to the six collections. Reads are synchronous
// snapshots of an in-memory cache; writes update the cache immediately and
// are persisted asynchronously by a single background writer. Persistence
// failures are logged and never surface to callers; the cache stays
// authoritative until the next snapshot application reconciles it.
type Store struct {
	mu            sync.RWMutex
	donors        []models.Donor
	hospitals     []models.Hospital
	requests      []models.BloodRequest
	donations     []models.Donation
	notifications []models.Notification
	rejections    []models.Rejection

	// Explicit index maps, maintained on write.
	requestsByHospital map[string]map[string]struct{}
	acceptedByDonor    map[string]map[string]struct{}

	listeners    map[int]func()
	nextListener int
	notifyArmed  bool
	debounce     time.Duration

	persister Persister
	writes    chan writeOp
	done      chan struct{}
}

type Options struct {
	// Debounce is the change-coalescing window. All mutations inside one
	// window produce a single listener callback.
	Debounce time.Duration
	// QueueSize buffers pending durable writes.
	QueueSize int
}

func New(p Persister, opts Options) *Store {
	if opts.Debounce <= 0 {
		opts.Debounce = 10 * time.Millisecond
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	s := &Store{
		requestsByHospital: make(map[string]map[string]struct{}),
		acceptedByDonor:    make(map[string]map[string]struct{}),
		listeners:          make(map[int]func()),
		debounce:           opts.Debounce,
		persister:          p,
		writes:             make(chan writeOp, opts.QueueSize),
		done:               make(chan struct{}),
	}
	go s.runWriter()
	return s
}

// Close drains the write queue and stops the background writer.
func (s *Store) Close() {
	close(s.writes)
	<-s.done
}

func (s *Store) runWriter() {
	defer close(s.done)
	for op := range s.writes {
		var err error
		switch op.kind {
		case opCreate:
			err = s.persister.Create(op.collection, op.record)
		case opPatch:
			err = s.persister.Patch(op.collection, op.id, op.fields, op.guard)
		case opDelete:
			err = s.persister.Delete(op.collection, op.id)
		}
		if err != nil {
			log.Printf("[store] persist %s %s: %v", op.collection, op.id, err)
		}
	}
}

// enqueue hands the op to the background writer. Blocks only when the
// queue is full; durable writes are never dropped.
func (s *Store) enqueue(op writeOp) {
	s.writes <- op
}

// Subscribe registers a change listener and returns its unsubscribe func.
// Listeners fire once per debounce window regardless of how many mutations
// occurred inside it.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// notifyChange must be called with s.mu held.
func (s *Store) notifyChange() {
	if s.notifyArmed {
		return
	}
	s.notifyArmed = true
	time.AfterFunc(s.debounce, s.flushNotify)
}

func (s *Store) flushNotify() {
	s.mu.Lock()
	s.notifyArmed = false
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// ApplySnapshot replaces the whole cache, rebuilds the index maps, and
// fires one change event. Warm start and remote reconciliation enter here;
// the merge is idempotent so a late echo of our own writes is harmless.
func (s *Store) ApplySnapshot(snap Snapshot) {
	s.mu.Lock()
	s.donors = append([]models.Donor(nil), snap.Donors...)
	s.hospitals = append([]models.Hospital(nil), snap.Hospitals...)
	s.requests = append([]models.BloodRequest(nil), snap.Requests...)
	s.donations = append([]models.Donation(nil), snap.Donations...)
	s.notifications = append([]models.Notification(nil), snap.Notifications...)
	s.rejections = append([]models.Rejection(nil), snap.Rejections...)
	s.requestsByHospital = make(map[string]map[string]struct{})
	s.acceptedByDonor = make(map[string]map[string]struct{})
	for _, r := range s.requests {
		s.indexRequestLocked(&r)
	}
	s.notifyChange()
	s.mu.Unlock()
}

func (s *Store) indexRequestLocked(r *models.BloodRequest) {
	if r.HospitalID != "" {
		if s.requestsByHospital[r.HospitalID] == nil {
			s.requestsByHospital[r.HospitalID] = make(map[string]struct{})
		}
		s.requestsByHospital[r.HospitalID][r.ID] = struct{}{}
	}
	if r.DonorID != "" {
		if s.acceptedByDonor[r.DonorID] == nil {
			s.acceptedByDonor[r.DonorID] = make(map[string]struct{})
		}
		s.acceptedByDonor[r.DonorID][r.ID] = struct{}{}
	}
}

// ---- donors ----

func (s *Store) Donors() []models.Donor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Donor(nil), s.donors...)
}

func (s *Store) DonorByID(id string) (models.Donor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.donors {
		if s.donors[i].ID == id {
			return s.donors[i], true
		}
	}
	return models.Donor{}, false
}

func (s *Store) DonorByEmail(email string) (models.Donor, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.donors {
		if strings.ToLower(s.donors[i].Email) == email {
			return s.donors[i], true
		}
	}
	return models.Donor{}, false
}

func (s *Store) AddDonor(d models.Donor) models.Donor {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.donors = append(s.donors, d)
	s.notifyChange()
	s.mu.Unlock()
	s.enqueue(writeOp{kind: opCreate, collection: CollectionDonors, id: d.ID, record: d})
	return d
}

// UpdateDonor merges the patch into the cached donor. When the id is not
// cached the local merge is a no-op but the durable patch is still
// attempted, tolerating cache lag behind the durable layer.
func (s *Store) UpdateDonor(id string, p DonorPatch) {
	cols := p.columns()
	if len(cols) == 0 {
		return
	}
	s.mu.Lock()
	for i := range s.donors {
		if s.donors[i].ID == id {
			p.apply(&s.donors[i])
			s.notifyChange()
			break
		}
	}
	s.mu.Unlock()
	s.enqueue(writeOp{kind: opPatch, collection: CollectionDonors, id: id, fields: cols})
}

// ---- hospitals ----

func (s *Store) Hospitals() []models.Hospital {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Hospital(nil), s.hospitals...)
}

func (s *Store) HospitalByID(id string) (models.Hospital, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.hospitals {
		if s.hospitals[i].ID == id {
			return s.hospitals[i], true
		}
	}
	return models.Hospital{}, false
}

// FindHospital matches email, name or license, case-insensitively.
func (s *Store) FindHospital(identifier string) (models.Hospital, bool) {
	needle := strings.ToLower(strings.TrimSpace(identifier))
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.hospitals {
		h := &s.hospitals[i]
		if strings.ToLower(h.Email) == needle ||
			strings.ToLower(h.Name) == needle ||
			strings.ToLower(h.License) == needle {
			return *h, true
		}
	}
	return models.Hospital{}, false
}

func (s *Store) AddHospital(h models.Hospital) models.Hospital {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.hospitals = append(s.hospitals, h)
	s.notifyChange()
	s.mu.Unlock()
	s.enqueue(writeOp{kind: opCreate, collection: CollectionHospitals, id: h.ID, record: h})
	return h
}

// ---- requests ----

func (s *Store) Requests() []models.BloodRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.BloodRequest(nil), s.requests...)
}

func (s *Store) RequestByID(id string) (models.BloodRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.requests {
		if s.requests[i].ID == id {
			return s.requests[i], true
		}
	}
	return models.BloodRequest{}, false
}

func (s *Store) RequestsByHospital(hospitalID string) []models.BloodRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.requestsByHospital[hospitalID]
	out := make([]models.BloodRequest, 0, len(ids))
	for i := range s.requests {
		if _, ok := ids[s.requests[i].ID]; ok {
			out = append(out, s.requests[i])
		}
	}
	return out
}

func (s *Store) AddRequest(r models.BloodRequest) models.BloodRequest {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.requests = append(s.requests, r)
	s.indexRequestLocked(&r)
	s.notifyChange()
	s.mu.Unlock()
	s.enqueue(writeOp{kind: opCreate, collection: CollectionRequests, id: r.ID, record: r})
	return r
}

// AcceptRequest is the guarded pending→accepted transition. The check and
// the mutation happen under one lock, and the durable patch carries a
// status guard, so two donors racing for the same request cannot both win.
func (s *Store) AcceptRequest(id, donorID, donorName string, now time.Time) (models.BloodRequest, error) {
	s.mu.Lock()
	var req *models.BloodRequest
	for i := range s.requests {
		if s.requests[i].ID == id {
			req = &s.requests[i]
			break
		}
	}
	if req == nil {
		s.mu.Unlock()
		return models.BloodRequest{}, domain.ErrNotFound
	}
	if req.Status != domain.RequestStatusPending {
		s.mu.Unlock()
		return models.BloodRequest{}, domain.ErrRequestNotPending
	}
	req.Status = domain.RequestStatusAccepted
	req.DonorID = donorID
	req.AcceptedBy = donorName
	t := now
	req.AcceptedAt = &t
	s.indexRequestLocked(req)
	updated := *req
	s.notifyChange()
	s.mu.Unlock()
	s.enqueue(writeOp{
		kind:       opPatch,
		collection: CollectionRequests,
		id:         id,
		fields: map[string]interface{}{
			"status":      domain.RequestStatusAccepted,
			"donor_id":    donorID,
			"accepted_by": donorName,
			"accepted_at": now,
		},
		guard: map[string]interface{}{"status": domain.RequestStatusPending},
	})
	return updated, nil
}

// CompleteRequest is the guarded accepted→completed transition.
func (s *Store) CompleteRequest(id, donationNumber string, now time.Time) (models.BloodRequest, error) {
	s.mu.Lock()
	var req *models.BloodRequest
	for i := range s.requests {
		if s.requests[i].ID == id {
			req = &s.requests[i]
			break
		}
	}
	if req == nil {
		s.mu.Unlock()
		return models.BloodRequest{}, domain.ErrNotFound
	}
	if req.Status != domain.RequestStatusAccepted || req.DonorID == "" {
		s.mu.Unlock()
		return models.BloodRequest{}, domain.ErrRequestNotAccepted
	}
	req.Status = domain.RequestStatusCompleted
	req.DonationApproved = true
	req.DonationNumber = donationNumber
	t := now
	req.ApprovedAt = &t
	updated := *req
	s.notifyChange()
	s.mu.Unlock()
	s.enqueue(writeOp{
		kind:       opPatch,
		collection: CollectionRequests,
		id:         id,
		fields: map[string]interface{}{
			"status":            domain.RequestStatusCompleted,
			"donation_approved": true,
			"donation_number":   donationNumber,
			"approved_at":       now,
		},
		guard: map[string]interface{}{"status": domain.RequestStatusAccepted},
	})
	return updated, nil
}

// DeleteRequest removes the request and its hospital/donor back-references.
func (s *Store) DeleteRequest(id string) (models.BloodRequest, error) {
	s.mu.Lock()
	idx := -1
	for i := range s.requests {
		if s.requests[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return models.BloodRequest{}, domain.ErrNotFound
	}
	removed := s.requests[idx]
	s.requests = append(s.requests[:idx], s.requests[idx+1:]...)
	if m := s.requestsByHospital[removed.HospitalID]; m != nil {
		delete(m, id)
		if len(m) == 0 {
			delete(s.requestsByHospital, removed.HospitalID)
		}
	}
	if removed.DonorID != "" {
		if m := s.acceptedByDonor[removed.DonorID]; m != nil {
			delete(m, id)
			if len(m) == 0 {
				delete(s.acceptedByDonor, removed.DonorID)
			}
		}
	}
	s.notifyChange()
	s.mu.Unlock()
	s.enqueue(writeOp{kind: opDelete, collection: CollectionRequests, id: id})
	return removed, nil
}

// AcceptedRequestIDs returns the ids of requests this donor has accepted.
func (s *Store) AcceptedRequestIDs(donorID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.acceptedByDonor[donorID]))
	for id := range s.acceptedByDonor[donorID] {
		out = append(out, id)
	}
	return out
}

// ---- donations ----

func (s *Store) Donations() []models.Donation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Donation(nil), s.donations...)
}

func (s *Store) DonationsByDonor(donorID string) []models.Donation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Donation
	for i := range s.donations {
		if s.donations[i].DonorID == donorID {
			out = append(out, s.donations[i])
		}
	}
	return out
}

func (s *Store) AddDonation(d models.Donation) models.Donation {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.donations = append(s.donations, d)
	s.notifyChange()
	s.mu.Unlock()
	s.enqueue(writeOp{kind: opCreate, collection: CollectionDonations, id: d.ID, record: d})
	return d
}

// ---- notifications ----

// NotificationsForDonor returns records delivered to the donor. A record
// with HospitalID set belongs to the hospital's feed even when it also names
// the acting donor.
func (s *Store) NotificationsForDonor(donorID string) []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Notification
	for i := range s.notifications {
		if s.notifications[i].DonorID == donorID && s.notifications[i].HospitalID == "" {
			out = append(out, s.notifications[i])
		}
	}
	return out
}

func (s *Store) NotificationsForHospital(hospitalID string) []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Notification
	for i := range s.notifications {
		if s.notifications[i].HospitalID == hospitalID {
			out = append(out, s.notifications[i])
		}
	}
	return out
}

func (s *Store) AddNotification(n models.Notification) models.Notification {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.notifications = append(s.notifications, n)
	s.notifyChange()
	s.mu.Unlock()
	s.enqueue(writeOp{kind: opCreate, collection: CollectionNotifications, id: n.ID, record: n})
	return n
}

func (s *Store) MarkNotificationRead(id string) {
	s.mu.Lock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Read = true
			s.notifyChange()
			break
		}
	}
	s.mu.Unlock()
	s.enqueue(writeOp{
		kind:       opPatch,
		collection: CollectionNotifications,
		id:         id,
		fields:     map[string]interface{}{"read": true},
	})
}

// MarkAllNotificationsRead flips every unread notification delivered to the
// donor. Hospital-targeted records naming this donor are left alone.
func (s *Store) MarkAllNotificationsRead(donorID string) {
	var ids []string
	s.mu.Lock()
	for i := range s.notifications {
		n := &s.notifications[i]
		if n.DonorID == donorID && n.HospitalID == "" && !n.Read {
			n.Read = true
			ids = append(ids, n.ID)
		}
	}
	if len(ids) > 0 {
		s.notifyChange()
	}
	s.mu.Unlock()
	for _, id := range ids {
		s.enqueue(writeOp{
			kind:       opPatch,
			collection: CollectionNotifications,
			id:         id,
			fields:     map[string]interface{}{"read": true},
		})
	}
}

// ---- rejections ----

func (s *Store) AddRejection(r models.Rejection) models.Rejection {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.rejections = append(s.rejections, r)
	s.notifyChange()
	s.mu.Unlock()
	s.enqueue(writeOp{kind: opCreate, collection: CollectionRejections, id: r.ID, record: r})
	return r
}

// RejectedRequestIDs returns the set of request ids this donor declined.
func (s *Store) RejectedRequestIDs(donorID string) map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]struct{})
	for i := range s.rejections {
		if s.rejections[i].DonorID == donorID {
			out[s.rejections[i].RequestID] = struct{}{}
		}
	}
	return out
}

func (s *Store) HasRejection(requestID, donorID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.rejections {
		if s.rejections[i].RequestID == requestID && s.rejections[i].DonorID == donorID {
			return true
		}
	}
	return false
}
