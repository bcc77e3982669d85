package domain

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a new document identifier. Identifiers are hyphen-stripped
// UUIDs so they can be embedded in "-"-delimited reaction tokens without
// breaking the token split.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
