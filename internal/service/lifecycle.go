package service

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"lifeline/internal/domain"
	"lifeline/internal/models"
	"lifeline/internal/store"
)

// RequestService drives a blood request through
// pending → accepted → completed. There is no rejected state on the request
// itself; a donor decline only writes a rejection marker.
type RequestService struct {
	store *store.Store
	notif *NotificationService
}

func NewRequestService(st *store.Store, notif *NotificationService) *RequestService {
	return &RequestService{store: st, notif: notif}
}

// Create opens a pending request carrying a snapshot of the hospital's
// name and location taken now.
func (s *RequestService) Create(hospitalID, bloodGroup string, units int, urgency string) (models.BloodRequest, error) {
	hospital, ok := s.store.HospitalByID(hospitalID)
	if !ok {
		return models.BloodRequest{}, domain.ErrNotFound
	}
	if bloodGroup != domain.BloodGroupAny && !domain.ValidBloodGroup(bloodGroup) {
		return models.BloodRequest{}, fmt.Errorf("invalid blood group %q", bloodGroup)
	}
	if units <= 0 {
		return models.BloodRequest{}, fmt.Errorf("units must be positive")
	}
	if !domain.ValidUrgency(urgency) {
		return models.BloodRequest{}, fmt.Errorf("invalid urgency %q", urgency)
	}
	// Without a location there is nothing to snapshot and donors would be
	// radius-tested against (0,0).
	if hospital.Location == nil {
		return models.BloodRequest{}, fmt.Errorf("hospital has no location on record")
	}
	req := s.store.AddRequest(models.BloodRequest{
		HospitalID:       hospital.ID,
		HospitalName:     hospital.Name,
		HospitalLocation: *hospital.Location,
		BloodGroup:       bloodGroup,
		Units:            units,
		Urgency:          urgency,
		Status:           domain.RequestStatusPending,
		CreatedAt:        time.Now(),
	})
	return req, nil
}

// Accept moves a pending request to accepted on behalf of a donor. The
// transition is a compare-and-swap in the store; losing the race returns
// ErrRequestNotPending so the donor gets a conflict message instead of
// silently stealing the request.
func (s *RequestService) Accept(requestID, donorID, donorName string) (models.BloodRequest, error) {
	donor, ok := s.store.DonorByID(donorID)
	if !ok {
		return models.BloodRequest{}, domain.ErrNotFound
	}
	if donorName == "" {
		donorName = donor.Name
	}
	req, err := s.store.AcceptRequest(requestID, donorID, donorName, time.Now())
	if err != nil {
		return models.BloodRequest{}, err
	}
	s.notif.NotifyDonorAccepted(req, donor)
	return req, nil
}

// Reject records a per-donor opt-out; the request status is untouched and
// other eligible donors keep seeing it. Rejecting twice is a no-op.
func (s *RequestService) Reject(requestID, donorID string) error {
	req, ok := s.store.RequestByID(requestID)
	if !ok {
		return domain.ErrNotFound
	}
	donor, ok := s.store.DonorByID(donorID)
	if !ok {
		return domain.ErrNotFound
	}
	if s.store.HasRejection(requestID, donorID) {
		return nil
	}
	s.store.AddRejection(models.Rejection{
		RequestID: requestID,
		DonorID:   donorID,
		CreatedAt: time.Now(),
	})
	s.notif.NotifyDonorRejected(req, donor)
	return nil
}

// Approve completes an accepted request. The five effects run in a fixed
// order with no rollback: generate the donation number, complete the
// request, write the immutable donation row, put the donor on cooldown,
// notify the donor. A failure partway leaves earlier effects in place; the
// change stream reconciles clients either way.
// A caller-supplied donation number is honored when present; normally it is
// generated here.
func (s *RequestService) Approve(requestID, donationNumber string) (models.BloodRequest, error) {
	current, ok := s.store.RequestByID(requestID)
	if !ok {
		return models.BloodRequest{}, domain.ErrNotFound
	}
	now := time.Now()
	number := donationNumber
	if number == "" {
		number = GenerateDonationNumber(current.BloodGroup, now)
	}

	req, err := s.store.CompleteRequest(requestID, number, now)
	if err != nil {
		return models.BloodRequest{}, err
	}

	s.store.AddDonation(models.Donation{
		DonationNumber: number,
		DonorID:        req.DonorID,
		HospitalID:     req.HospitalID,
		HospitalName:   req.HospitalName,
		BloodGroup:     req.BloodGroup,
		Units:          req.Units,
		DonatedAt:      now,
		ApprovedAt:     now,
	})

	if donor, ok := s.store.DonorByID(req.DonorID); ok {
		inactive := domain.DonorInactive
		count := donor.DonationCount + 1
		s.store.UpdateDonor(donor.ID, store.DonorPatch{
			Status:               &inactive,
			LastDonationApproved: &now,
			DonationCount:        &count,
		})
	}

	s.notif.NotifyDonationApproved(req.DonorID, req.HospitalName, number)
	return req, nil
}

// Delete is the administrative removal; the store also drops the
// hospital/donor back-references.
func (s *RequestService) Delete(requestID string) error {
	_, err := s.store.DeleteRequest(requestID)
	return err
}

const donationNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateDonationNumber builds the human-readable confirmation code,
// DON-{YYYYMMDD}-{group code}-{6 random chars}, where + and - in the blood
// group render as P and N (A+ → AP).
func GenerateDonationNumber(bloodGroup string, now time.Time) string {
	code := strings.NewReplacer("+", "P", "-", "N").Replace(bloodGroup)
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = donationNumberAlphabet[rand.IntN(len(donationNumberAlphabet))]
	}
	return fmt.Sprintf("DON-%s-%s-%s", now.Format("20060102"), code, suffix)
}
