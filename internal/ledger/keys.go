package ledger

import (
	"strings"

	"gagyebu/internal/core"
)

// KeyPrefix marks date bucket keys in the store; other keys are ignored.
const KeyPrefix = "ledger-"

// Key returns the storage key for a date bucket, e.g. "ledger-2024-05-01".
func Key(d core.Date) string {
	return KeyPrefix + d.String()
}

// ParseKey extracts the date from a bucket key. Keys without the prefix or
// with an invalid date report false.
func ParseKey(key string) (core.Date, bool) {
	rest, ok := strings.CutPrefix(key, KeyPrefix)
	if !ok {
		return core.Date{}, false
	}
	d, err := core.ParseDate(rest)
	if err != nil || d.String() != rest {
		return core.Date{}, false
	}
	return d, true
}
