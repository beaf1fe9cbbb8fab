package models

import "time"

type Hospital struct {
	ID               string       `gorm:"primaryKey;size:36" json:"id"`
	Name             string       `gorm:"size:255;not null;index" json:"name"`
	License          string       `gorm:"size:64;index" json:"license"`
	Establishment    string       `gorm:"size:64" json:"establishment,omitempty"`
	Email            string       `gorm:"size:255;index" json:"email"`
	Contact          string       `gorm:"size:32" json:"contact"`
	EmergencyHotline string       `gorm:"size:32" json:"emergencyHotline,omitempty"`
	Location         *Coordinates `gorm:"type:json" json:"location,omitempty"`
	PasswordHash     string       `gorm:"size:255" json:"-"`
	Status           string       `gorm:"size:16" json:"status"`
	RegisteredAt     time.Time    `json:"registeredAt"`
}

func (Hospital) TableName() string { return "hospitals" }
