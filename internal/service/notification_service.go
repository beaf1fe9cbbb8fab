package service

import (
	"fmt"
	"time"

	"lifeline/internal/domain"
	"lifeline/internal/models"
	"lifeline/internal/store"
	"lifeline/internal/ws"
)

// NotificationService persists notification records and pushes them to the
// target actor's open connections. Push is best-effort; the record is the
// contract.
type NotificationService struct {
	store *store.Store
	hub   *ws.Hub
}

func NewNotificationService(st *store.Store, hub *ws.Hub) *NotificationService {
	return &NotificationService{store: st, hub: hub}
}

func (s *NotificationService) notify(n models.Notification) {
	n.CreatedAt = time.Now()
	saved := s.store.AddNotification(n)
	if s.hub == nil {
		return
	}
	target := saved.HospitalID
	if target == "" {
		target = saved.DonorID
	}
	if target != "" {
		s.hub.BroadcastToActor(target, map[string]interface{}{"type": "notification", "notification": saved})
	}
}

// NotifyDonorAccepted tells the hospital a donor took its request.
func (s *NotificationService) NotifyDonorAccepted(req models.BloodRequest, donor models.Donor) {
	s.notify(models.Notification{
		Type:       domain.NotifDonorAccepted,
		HospitalID: req.HospitalID,
		DonorID:    donor.ID,
		DonorName:  donor.Name,
		BloodGroup: donor.BloodGroup,
		RequestID:  req.ID,
		Message:    fmt.Sprintf("%s (%s) has accepted your blood request.", donor.Name, donor.BloodGroup),
	})
}

// NotifyDonorRejected tells the hospital a donor declined; the request
// stays open for everyone else.
func (s *NotificationService) NotifyDonorRejected(req models.BloodRequest, donor models.Donor) {
	s.notify(models.Notification{
		Type:       domain.NotifDonorRejected,
		HospitalID: req.HospitalID,
		DonorID:    donor.ID,
		DonorName:  donor.Name,
		BloodGroup: donor.BloodGroup,
		RequestID:  req.ID,
		Message:    fmt.Sprintf("%s has declined your blood request.", donor.Name),
	})
}

// NotifyDonationApproved hands the donor their donation number.
func (s *NotificationService) NotifyDonationApproved(donorID, hospitalName, donationNumber string) {
	s.notify(models.Notification{
		Type:           domain.NotifDonationApproved,
		DonorID:        donorID,
		HospitalName:   hospitalName,
		DonationNumber: donationNumber,
		Message:        fmt.Sprintf("Your donation has been approved! Donation Number: %s", donationNumber),
	})
}
