package domain

const (
	DonorActive   = "active"
	DonorInactive = "inactive"
)

const (
	RequestStatusPending   = "pending"
	RequestStatusAccepted  = "accepted"
	RequestStatusCompleted = "completed"
)

const (
	UrgencyCritical = "critical"
	UrgencyHigh     = "high"
	UrgencyMedium   = "medium"
	UrgencyLow      = "low"
)

const (
	NotifDonorAccepted    = "donor_accepted"
	NotifDonorRejected    = "donor_rejected"
	NotifDonationApproved = "donation_approved"
)

// BloodGroupAny matches every donor group on a request. It is a wildcard
// tag, not ABO cross-compatibility.
const BloodGroupAny = "Any"

var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// CooldownDays is the mandatory rest period after an approved donation,
// the standard whole-blood deferral interval.
const CooldownDays = 56

// GPSRadiusKm is the maximum hospital-to-donor distance for a match.
const GPSRadiusKm = 15.0

func ValidBloodGroup(bg string) bool {
	for _, g := range BloodGroups {
		if g == bg {
			return true
		}
	}
	return false
}

func ValidUrgency(u string) bool {
	switch u {
	case UrgencyCritical, UrgencyHigh, UrgencyMedium, UrgencyLow:
		return true
	}
	return false
}
