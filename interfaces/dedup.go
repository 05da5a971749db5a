package interfaces

import "time"

// DedupService suppresses repeat sightings of the same subscriber
// identity within a short window. Best-effort and process-local only.
type DedupService interface {
	// ShouldProcess atomically checks and records identityKey. It
	// returns false when the key was seen within the window.
	ShouldProcess(identityKey string, now time.Time) bool
	// Sweep drops entries older than the window and returns how many
	// were removed.
	Sweep(now time.Time) int
	Size() int
}
