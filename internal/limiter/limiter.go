// Package limiter trims candidate lists for --limit, --offset and --tail.
package limiter

import (
	"github.com/cockroachdb/errors"
)

// ErrInvalid is returned for negative or conflicting settings.
var ErrInvalid = errors.New("invalid limit")

// Config holds the record-limiting parameters.
type Config struct {
	Limit  int // Show only this many records (0 = unlimited)
	Offset int // Skip the first N records (0 = no skip)
	Tail   int // Show only the last N records (0 = disabled); mutually exclusive with Limit
}

// Validate checks for conflicting flag combinations.
// Rules:
// - Limit and Tail are mutually exclusive
// - If Tail is set, Offset is ignored
// - All numeric values must be non-negative
func (c Config) Validate() error {
	if c.Limit < 0 {
		return errors.Wrapf(ErrInvalid, "--limit must be non-negative, got %d", c.Limit)
	}
	if c.Offset < 0 {
		return errors.Wrapf(ErrInvalid, "--offset must be non-negative, got %d", c.Offset)
	}
	if c.Tail < 0 {
		return errors.Wrapf(ErrInvalid, "--tail must be non-negative, got %d", c.Tail)
	}
	if c.Limit > 0 && c.Tail > 0 {
		return errors.Wrap(ErrInvalid, "--limit and --tail are mutually exclusive")
	}
	return nil
}

// IsActive returns true if any limiting is configured.
func (c Config) IsActive() bool {
	return c.Limit > 0 || c.Offset > 0 || c.Tail > 0
}

// Bounds returns the half-open window [start, end) kept out of length records.
func (c Config) Bounds(length int) (start, end int) {
	if c.Tail > 0 {
		return max(length-c.Tail, 0), length
	}
	start = min(c.Offset, length)
	end = length
	if c.Limit > 0 {
		end = min(start+c.Limit, length)
	}
	return start, end
}

// Apply returns the window of items selected by c. The result shares the
// backing array of items.
func Apply[T any](c Config, items []T) []T {
	if !c.IsActive() {
		return items
	}
	start, end := c.Bounds(len(items))
	return items[start:end]
}
