package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsSufficient(t *testing.T) {
	expStart := time.Date(2024, 1, 16, 9, 30, 0, 0, time.UTC)
	expEnd := time.Date(2024, 1, 16, 16, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		cachedStart time.Time
		cachedEnd   time.Time
		want        bool
	}{
		{"exact match", expStart, expEnd, true},
		{"wider than expected", expStart.Add(-time.Hour), expEnd.Add(time.Hour), true},
		{"start late within tolerance", expStart.Add(15 * time.Minute), expEnd, true},
		{"start late beyond tolerance", expStart.Add(16 * time.Minute), expEnd, false},
		{"end short within tolerance", expStart, expEnd.Add(-10 * time.Minute), true},
		{"end short beyond tolerance", expStart, expEnd.Add(-11 * time.Minute), false},
		{"both at the limit", expStart.Add(15 * time.Minute), expEnd.Add(-10 * time.Minute), true},
		{"covers end but misses start", expStart.Add(2 * time.Hour), expEnd, false},
		{"covers start but stops early", expStart, expEnd.Add(-time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsSufficient(tt.cachedStart, tt.cachedEnd, expStart, expEnd)
			assert.Equal(t, tt.want, got)
		})
	}
}
