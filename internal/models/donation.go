package models

import "time"

// Donation is the immutable record of a completed transfer, written exactly
// once when a hospital approves an accepted request.
type Donation struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	DonationNumber string    `gorm:"size:32;uniqueIndex;not null" json:"donationNumber"`
	DonorID        string    `gorm:"size:36;not null;index" json:"donorId"`
	HospitalID     string    `gorm:"size:36;not null;index" json:"hospitalId"`
	HospitalName   string    `gorm:"size:255" json:"hospitalName"`
	BloodGroup     string    `gorm:"size:3" json:"bloodGroup"`
	Units          int       `json:"units"`
	DonatedAt      time.Time `json:"donatedAt"`
	ApprovedAt     time.Time `json:"approvedAt"`
}

func (Donation) TableName() string { return "donations" }
