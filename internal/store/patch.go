package store

import (
	"time"

	"lifeline/internal/models"
)

// DonorPatch carries only the fields being changed. apply merges into the
// cached record; columns returns the same delta keyed by column name so the
// durable layer persists the identical partial merge. Requests have no
// general patch: they mutate only through the guarded lifecycle transitions.

type DonorPatch struct {
	Name                 *string
	BloodGroup           *string
	Age                  *int
	Weight               *float64
	Phone                *string
	Email                *string
	Location             *models.Coordinates
	Medical              *models.StringList
	Lifestyle            *models.Lifestyle
	LastDonation         *time.Time
	Status               *string
	DonationCount        *int
	LastDonationApproved *time.Time
}

func (p DonorPatch) apply(d *models.Donor) {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.BloodGroup != nil {
		d.BloodGroup = *p.BloodGroup
	}
	if p.Age != nil {
		d.Age = *p.Age
	}
	if p.Weight != nil {
		d.Weight = *p.Weight
	}
	if p.Phone != nil {
		d.Phone = *p.Phone
	}
	if p.Email != nil {
		d.Email = *p.Email
	}
	if p.Location != nil {
		loc := *p.Location
		d.Location = &loc
	}
	if p.Medical != nil {
		d.Medical = *p.Medical
	}
	if p.Lifestyle != nil {
		d.Lifestyle = *p.Lifestyle
	}
	if p.LastDonation != nil {
		t := *p.LastDonation
		d.LastDonation = &t
	}
	if p.Status != nil {
		d.Status = *p.Status
	}
	if p.DonationCount != nil {
		d.DonationCount = *p.DonationCount
	}
	if p.LastDonationApproved != nil {
		t := *p.LastDonationApproved
		d.LastDonationApproved = &t
	}
}

func (p DonorPatch) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.BloodGroup != nil {
		cols["blood_group"] = *p.BloodGroup
	}
	if p.Age != nil {
		cols["age"] = *p.Age
	}
	if p.Weight != nil {
		cols["weight"] = *p.Weight
	}
	if p.Phone != nil {
		cols["phone"] = *p.Phone
	}
	if p.Email != nil {
		cols["email"] = *p.Email
	}
	if p.Location != nil {
		cols["location"] = *p.Location
	}
	if p.Medical != nil {
		cols["medical"] = *p.Medical
	}
	if p.Lifestyle != nil {
		cols["lifestyle"] = *p.Lifestyle
	}
	if p.LastDonation != nil {
		cols["last_donation"] = *p.LastDonation
	}
	if p.Status != nil {
		cols["status"] = *p.Status
	}
	if p.DonationCount != nil {
		cols["donation_count"] = *p.DonationCount
	}
	if p.LastDonationApproved != nil {
		cols["last_donation_approved"] = *p.LastDonationApproved
	}
	return cols
}
