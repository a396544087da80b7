package audit

import (
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// NewEntryID returns a ULID for at. IDs generated within the same millisecond
// are strictly increasing, so sorting by id matches creation order.
func NewEntryID(at time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), entropy).String()
}

// ParseEntryID validates a textual entry id.
func ParseEntryID(id string) (ulid.ULID, error) {
	return ulid.ParseStrict(id)
}
