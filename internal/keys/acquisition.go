package keys

import (
	"strings"

	"climate/internal/models"
)

// sanitizeKey replaces spaces with hyphens and lowercases the string.
func sanitizeKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "-"))
}

// Event returns the Kafka message key for an acquisition event. Events for
// the same area share a key and therefore a partition.
func Event(e models.AcquisitionEvent) string {
	if e.Geohash != "" {
		return e.Geohash
	}
	return sanitizeKey(e.Location)
}
