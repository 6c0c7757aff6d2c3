package utils

import (
	"crypto/rand"

	"github.com/oklog/ulid"
)

// NewULID returns a lexically sortable unique id. crypto/rand is safe for
// concurrent use, unlike a shared monotonic entropy source.
func NewULID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
