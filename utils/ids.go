package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns prefix followed by the first eight hex digits of a random
// UUID, upper-cased, e.g. "USR-3F2A9C1B".
func NewID(prefix string) string {
	short := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return prefix + "-" + short
}
