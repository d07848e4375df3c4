package util

import (
	"github.com/oklog/ulid/v2"
)

// NewULID generates a new ULID string.
// ulid.Make is monotonic within a process and safe for concurrent use.
func NewULID() string {
	return ulid.Make().String()
}
