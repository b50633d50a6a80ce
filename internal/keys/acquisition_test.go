package keys

import (
	"testing"

	"climate/internal/models"
)

func TestEvent(t *testing.T) {
	tests := []struct {
		name  string
		event models.AcquisitionEvent
		want  string
	}{
		{name: "geohash", event: models.AcquisitionEvent{Location: "Oakville Canada", Geohash: "dpxhs1"}, want: "dpxhs1"},
		{name: "fallback to location", event: models.AcquisitionEvent{Location: "Oakville Canada"}, want: "oakville-canada"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Event(tt.event); got != tt.want {
				t.Errorf("Event() = %q; want %q", got, tt.want)
			}
		})
	}
}
