package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"lifeline/internal/domain"
)

// Lifestyle holds the screening answers collected at registration.
type Lifestyle struct {
	Smoke   string `json:"smoke"`
	Alcohol string `json:"alcohol"`
	Tattoo  string `json:"tattoo"`
}

func (l Lifestyle) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *Lifestyle) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		return nil
	}
	return fmt.Errorf("lifestyle: cannot scan %T", src)
}

type Donor struct {
	ID                   string       `gorm:"primaryKey;size:36" json:"id"`
	Name                 string       `gorm:"size:255;not null" json:"name"`
	BloodGroup           string       `gorm:"size:3;not null;index" json:"bloodGroup"`
	Age                  int          `json:"age"`
	Weight               float64      `json:"weight"`
	Phone                string       `gorm:"size:32" json:"phone"`
	Email                string       `gorm:"size:255;index" json:"email"`
	PasswordHash         string       `gorm:"size:255" json:"-"`
	Location             *Coordinates `gorm:"type:json" json:"location,omitempty"`
	Medical              StringList   `gorm:"type:json" json:"medical"`
	Lifestyle            Lifestyle    `gorm:"type:json" json:"lifestyle"`
	LastDonation         *time.Time   `json:"lastDonation,omitempty"`
	Status               string       `gorm:"size:16;not null;index" json:"status"` // active | inactive
	RegisteredAt         time.Time    `json:"registeredAt"`
	DonationCount        int          `json:"donationCount"`
	LastDonationApproved *time.Time   `json:"lastDonationApproved,omitempty"`
}

func (Donor) TableName() string { return "donors" }

func (d *Donor) IsActive() bool { return d.Status == domain.DonorActive }

// OnCooldown reports whether the post-donation rest period is still running.
// Cooldown is derived from the last approved donation, independent of the
// manual status flag.
func (d *Donor) OnCooldown(now time.Time) bool {
	if d.LastDonationApproved == nil {
		return false
	}
	end := d.LastDonationApproved.Add(domain.CooldownDays * 24 * time.Hour)
	return now.Before(end)
}

// CooldownRemainingDays returns the days left on cooldown, rounded up,
// or nil when the donor is not on cooldown.
func (d *Donor) CooldownRemainingDays(now time.Time) *int {
	if d.LastDonationApproved == nil {
		return nil
	}
	end := d.LastDonationApproved.Add(domain.CooldownDays * 24 * time.Hour)
	if !now.Before(end) {
		return nil
	}
	days := int((end.Sub(now) + 24*time.Hour - time.Nanosecond) / (24 * time.Hour))
	return &days
}
