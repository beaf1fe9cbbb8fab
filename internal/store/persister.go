package store

import "lifeline/internal/models"

// Collection names shared by the cache and the durable layer.
const (
	CollectionDonors        = "donors"
	CollectionHospitals     = "hospitals"
	CollectionRequests      = "requests"
	CollectionDonations     = "donations"
	CollectionNotifications = "notifications"
	CollectionRejections    = "rejections"
)

// Persister is the durable side of the store. Every call happens on the
// store's background writer goroutine; implementations only need to be safe
// for that single caller. Errors are logged by the store and never reach
// the code that issued the write.
type Persister interface {
	// Create inserts a full record into the named collection.
	Create(collection string, record interface{}) error
	// Patch applies a partial column update. A non-nil guard makes the
	// update conditional: rows are only touched while the guard columns
	// still hold the given values.
	Patch(collection, id string, fields, guard map[string]interface{}) error
	// Delete removes the record with the given id.
	Delete(collection, id string) error
}

type opKind int

const (
	opCreate opKind = iota
	opPatch
	opDelete
)

type writeOp struct {
	kind       opKind
	collection string
	id         string
	record     interface{}
	fields     map[string]interface{}
	guard      map[string]interface{}
}

// Snapshot is a full copy of every collection, used for warm start and for
// wholesale remote-sync application.
type Snapshot struct {
	Donors        []models.Donor
	Hospitals     []models.Hospital
	Requests      []models.BloodRequest
	Donations     []models.Donation
	Notifications []models.Notification
	Rejections    []models.Rejection
}
