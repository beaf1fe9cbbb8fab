package models

import "time"

// Rejection is a durable per-donor opt-out for one request. Append-only;
// the request itself stays pending for everyone else.
type Rejection struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	RequestID string    `gorm:"size:36;not null;index" json:"requestId"`
	DonorID   string    `gorm:"size:36;not null;index" json:"donorId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Rejection) TableName() string { return "rejections" }
