package ids

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// New returns a lexicographically sortable identifier. Each call draws its
// entropy independently from crypto/rand: generated values double as opaque
// credentials, so one value must never be derivable from another minted in
// the same millisecond.
func New() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
