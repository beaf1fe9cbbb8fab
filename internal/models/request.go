package models

import (
	"time"

	"lifeline/internal/domain"
)

// BloodRequest carries a snapshot of the hospital location taken at
// creation time, not a live reference; moving the hospital later must not
// change where open requests match.
type BloodRequest struct {
	ID               string      `gorm:"primaryKey;size:36" json:"id"`
	HospitalID       string      `gorm:"size:36;not null;index" json:"hospitalId"`
	HospitalName     string      `gorm:"size:255" json:"hospitalName"`
	HospitalLocation Coordinates `gorm:"type:json" json:"hospitalLocation"`
	BloodGroup       string      `gorm:"size:3;not null;index" json:"bloodGroup"` // one of the 8 tags or "Any"
	Units            int         `gorm:"not null" json:"units"`
	Urgency          string      `gorm:"size:16;not null" json:"urgency"`
	Status           string      `gorm:"size:16;not null;index" json:"status"` // pending | accepted | completed
	CreatedAt        time.Time   `json:"createdAt"`
	AcceptedBy       string      `gorm:"size:255" json:"acceptedBy,omitempty"`
	DonorID          string      `gorm:"size:36;index" json:"donorId,omitempty"`
	AcceptedAt       *time.Time  `json:"acceptedAt,omitempty"`
	DonationApproved bool        `json:"donationApproved,omitempty"`
	DonationNumber   string      `gorm:"size:32" json:"donationNumber,omitempty"`
	ApprovedAt       *time.Time  `json:"approvedAt,omitempty"`
}

func (BloodRequest) TableName() string { return "blood_requests" }

func (r *BloodRequest) IsPending() bool   { return r.Status == domain.RequestStatusPending }
func (r *BloodRequest) IsAccepted() bool  { return r.Status == domain.RequestStatusAccepted }
func (r *BloodRequest) IsCompleted() bool { return r.Status == domain.RequestStatusCompleted }
