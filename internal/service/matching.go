package service

import (
	"math"
	"sort"
	"time"

	"lifeline/internal/domain"
	"lifeline/internal/models"
	"lifeline/internal/store"
	"lifeline/pkg/geo"
)

// MatchingService decides which donors a request can reach and which
// requests a donor gets to see.
type MatchingService struct {
	store *store.Store
}

func NewMatchingService(st *store.Store) *MatchingService {
	return &MatchingService{store: st}
}

// ReactivateExpired flips donors back to active once their cooldown has
// elapsed. There is no scheduler for this; every read path that cares about
// availability calls it first.
func (s *MatchingService) ReactivateExpired(now time.Time) {
	active := domain.DonorActive
	for _, d := range s.store.Donors() {
		if d.Status == domain.DonorInactive && d.LastDonationApproved != nil && !d.OnCooldown(now) {
			s.store.UpdateDonor(d.ID, store.DonorPatch{Status: &active})
		}
	}
}

// EligibleDonors filters the donor set for a request: active, off cooldown,
// group tag equal (or request group "Any"), location known, and within the
// matching radius. Input order is preserved; callers wanting nearest-first
// sort on distance themselves.
func (s *MatchingService) EligibleDonors(bloodGroup string, hospitalLoc models.Coordinates, now time.Time) []models.Donor {
	s.ReactivateExpired(now)
	var out []models.Donor
	for _, d := range s.store.Donors() {
		if !eligible(&d, bloodGroup, hospitalLoc, domain.GPSRadiusKm, now) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func eligible(d *models.Donor, bloodGroup string, hospitalLoc models.Coordinates, radiusKm float64, now time.Time) bool {
	if d.Status != domain.DonorActive {
		return false
	}
	if d.OnCooldown(now) {
		return false
	}
	if bloodGroup != domain.BloodGroupAny && d.BloodGroup != bloodGroup {
		return false
	}
	if d.Location == nil {
		return false
	}
	dist := geo.DistanceKm(hospitalLoc.Lat, hospitalLoc.Lng, d.Location.Lat, d.Location.Lng)
	return dist <= radiusKm
}

// DonorMatch is the hospital-facing view of an eligible donor. Exact donor
// coordinates stay on the server; only distance and a coarse label go out.
type DonorMatch struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	BloodGroup    string  `json:"bloodGroup"`
	DonationCount int     `json:"donationCount"`
	DistanceKm    float64 `json:"distanceKm"`
	Proximity     string  `json:"proximity"`
}

// EligibleDonorsWithDistance returns the eligible set annotated with
// distance, nearest first.
func (s *MatchingService) EligibleDonorsWithDistance(bloodGroup string, hospitalLoc models.Coordinates, now time.Time) []DonorMatch {
	donors := s.EligibleDonors(bloodGroup, hospitalLoc, now)
	out := make([]DonorMatch, 0, len(donors))
	for _, d := range donors {
		dist := geo.DistanceKm(hospitalLoc.Lat, hospitalLoc.Lng, d.Location.Lat, d.Location.Lng)
		out = append(out, DonorMatch{
			ID:            d.ID,
			Name:          d.Name,
			BloodGroup:    d.BloodGroup,
			DonationCount: d.DonationCount,
			DistanceKm:    math.Round(dist*100) / 100,
			Proximity:     geo.Label(geo.Progress(dist, domain.GPSRadiusKm)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out
}

// VisibleRequests is the donor-facing feed. A request the donor has already
// accepted is always shown, even when the donor has since moved out of
// radius or changed group; everything else must be pending, group-matched,
// in radius, and not previously declined by this donor. Newest first.
func (s *MatchingService) VisibleRequests(donor models.Donor, now time.Time) []models.BloodRequest {
	s.ReactivateExpired(now)
	rejected := s.store.RejectedRequestIDs(donor.ID)
	var out []models.BloodRequest
	for _, req := range s.store.Requests() {
		if req.DonorID == donor.ID {
			out = append(out, req)
			continue
		}
		if req.BloodGroup != donor.BloodGroup && req.BloodGroup != domain.BloodGroupAny {
			continue
		}
		if req.Status != domain.RequestStatusPending {
			continue
		}
		if _, ok := rejected[req.ID]; ok {
			continue
		}
		if donor.Location != nil {
			dist := geo.DistanceKm(donor.Location.Lat, donor.Location.Lng,
				req.HospitalLocation.Lat, req.HospitalLocation.Lng)
			if dist > domain.GPSRadiusKm {
				continue
			}
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
