package util

import (
	"github.com/oklog/ulid/v2"
)

// NewID generates a new ULID string. IDs are time-ordered and monotonic
// within the same millisecond.
func NewID() string {
	return ulid.Make().String()
}
