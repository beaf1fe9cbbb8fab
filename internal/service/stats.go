package service

import (
	"lifeline/internal/domain"
	"lifeline/internal/store"
)

// StatsSummary is the landing-page counter set.
type StatsSummary struct {
	DonorCount     int            `json:"donorCount"`
	HospitalCount  int            `json:"hospitalCount"`
	ActiveDonors   int            `json:"activeDonors"`
	TotalDonations int            `json:"totalDonations"`
	LivesImpacted  int            `json:"livesImpacted"`
	ByBlood        map[string]int `json:"byBlood"`
}

type StatsService struct {
	store *store.Store
}

func NewStatsService(st *store.Store) *StatsService {
	return &StatsService{store: st}
}

func (s *StatsService) Stats() StatsSummary {
	donors := s.store.Donors()
	out := StatsSummary{
		DonorCount:    len(donors),
		HospitalCount: len(s.store.Hospitals()),
		ByBlood:       make(map[string]int),
	}
	for _, d := range donors {
		if d.Status == domain.DonorActive {
			out.ActiveDonors++
		}
		bg := d.BloodGroup
		if bg == "" {
			bg = "Unknown"
		}
		out.ByBlood[bg]++
	}
	out.TotalDonations = len(s.store.Donations())
	// One donation can help up to three recipients.
	out.LivesImpacted = out.TotalDonations * 3
	return out
}
