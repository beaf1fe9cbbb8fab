package models

import "time"

// Notification is delivered to the hospital when HospitalID is set,
// otherwise to the donor; DonorID on a hospital notification names the donor
// who acted. Only the Read flag is ever mutated after creation.
type Notification struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Type           string    `gorm:"size:32;not null;index" json:"type"`
	DonorID        string    `gorm:"size:36;index" json:"donorId,omitempty"`
	HospitalID     string    `gorm:"size:36;index" json:"hospitalId,omitempty"`
	DonorName      string    `gorm:"size:255" json:"donorName,omitempty"`
	HospitalName   string    `gorm:"size:255" json:"hospitalName,omitempty"`
	BloodGroup     string    `gorm:"size:3" json:"bloodGroup,omitempty"`
	RequestID      string    `gorm:"size:36" json:"requestId,omitempty"`
	DonationNumber string    `gorm:"size:32" json:"donationNumber,omitempty"`
	Message        string    `gorm:"type:text" json:"message"`
	CreatedAt      time.Time `json:"createdAt"`
	Read           bool      `json:"read"`
}

func (Notification) TableName() string { return "notifications" }
