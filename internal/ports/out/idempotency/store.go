package idempotency

import (
	"context"
	"time"

	"github.com/campflow/camp-registration-api/internal/domain"
)

// Key is the caller-provided Idempotency-Key header value.
type Key string

// Routes that accept an Idempotency-Key. Route strings are method plus path template so a key
// reused on another camp still matches the same scope.
const (
	RouteCreateCamp     = "POST /camps"
	RouteRegisterInCamp = "POST /camps/{campId}/registration"
)

// Fingerprint scopes a stored record to one caller and one route.
//
// Each key owns two records: a pin (empty BodyHash) holding the hash of the first payload,
// and the response stored under the full fingerprint.
type Fingerprint struct {
	Key      Key
	Subject  domain.SubjectID
	Method   string
	Route    string
	BodyHash string
}

// Pin returns the fingerprint of the record that remembers which payload owns the key.
func (fp Fingerprint) Pin() Fingerprint {
	fp.BodyHash = ""
	return fp
}

// ForBody returns the fingerprint under which the response to payload hash is stored.
func (fp Fingerprint) ForBody(hash string) Fingerprint {
	fp.BodyHash = hash
	return fp
}

// Record is either a pin (StatusCode 0, Body is the payload hash) or a replayable response.
// A zero CreatedAt is filled in by the store from its clock.
type Record struct {
	StatusCode  int
	ContentType string
	Body        []byte
	CreatedAt   time.Time
}

// PinRecord builds the record that ties a key to payload hash.
func PinRecord(hash string) Record {
	return Record{ContentType: "text/plain", Body: []byte(hash)}
}

// PinnedHash reports the payload hash held by a pin record.
func (r Record) PinnedHash() string { return string(r.Body) }

// Replayable reports whether r is a stored response rather than a pin.
func (r Record) Replayable() bool { return r.StatusCode != 0 }

// DefaultRetention bounds how long a key stays pinned and its response replayable.
const DefaultRetention = 24 * time.Hour

// Store persists idempotency records. Records older than the store's retention are absent.
type Store interface {
	Get(ctx context.Context, fp Fingerprint) (Record, bool, error)
	Put(ctx context.Context, fp Fingerprint, rec Record) error
}
