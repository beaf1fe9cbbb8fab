package database

import (
	"fmt"

	"lifeline/internal/models"
	"lifeline/internal/store"

	"gorm.io/gorm"
)

// GormPersister is the durable side of the record store. It runs on the
// store's single writer goroutine, so plain sequential Gorm calls are fine.
type GormPersister struct {
	db *gorm.DB
}

func NewGormPersister(db *gorm.DB) *GormPersister {
	return &GormPersister{db: db}
}

func modelFor(collection string) (interface{}, error) {
	switch collection {
	case store.CollectionDonors:
		return &models.Donor{}, nil
	case store.CollectionHospitals:
		return &models.Hospital{}, nil
	case store.CollectionRequests:
		return &models.BloodRequest{}, nil
	case store.CollectionDonations:
		return &models.Donation{}, nil
	case store.CollectionNotifications:
		return &models.Notification{}, nil
	case store.CollectionRejections:
		return &models.Rejection{}, nil
	}
	return nil, fmt.Errorf("unknown collection %q", collection)
}

func (p *GormPersister) Create(collection string, record interface{}) error {
	if _, err := modelFor(collection); err != nil {
		return err
	}
	return p.db.Create(record).Error
}

// Patch applies a partial column update. A guard makes it a conditional
// write: the UPDATE only matches while the guarded columns still hold the
// expected values, which is what closes the accept race across processes.
func (p *GormPersister) Patch(collection, id string, fields, guard map[string]interface{}) error {
	model, err := modelFor(collection)
	if err != nil {
		return err
	}
	q := p.db.Model(model).Where("id = ?", id)
	for col, val := range guard {
		q = q.Where(fmt.Sprintf("%s = ?", col), val)
	}
	return q.Updates(fields).Error
}

func (p *GormPersister) Delete(collection, id string) error {
	model, err := modelFor(collection)
	if err != nil {
		return err
	}
	return p.db.Where("id = ?", id).Delete(model).Error
}

// LoadSnapshot reads every collection for the store's warm start.
func LoadSnapshot(db *gorm.DB) (store.Snapshot, error) {
	var snap store.Snapshot
	if err := db.Find(&snap.Donors).Error; err != nil {
		return snap, err
	}
	if err := db.Find(&snap.Hospitals).Error; err != nil {
		return snap, err
	}
	if err := db.Find(&snap.Requests).Error; err != nil {
		return snap, err
	}
	if err := db.Find(&snap.Donations).Error; err != nil {
		return snap, err
	}
	if err := db.Find(&snap.Notifications).Error; err != nil {
		return snap, err
	}
	if err := db.Find(&snap.Rejections).Error; err != nil {
		return snap, err
	}
	return snap, nil
}
