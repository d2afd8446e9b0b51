package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompact(t *testing.T) {
	tests := []struct {
		num      float64
		decimals int
		want     string
	}{
		{2_500_000_000, 2, "2.50B"},
		{45_000_000, 2, "45.00M"},
		{12_345, 1, "12.3K"},
		{999, 2, "999.00"},
		{0, 0, "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Compact(tt.num, tt.decimals), "Compact(%v, %d)", tt.num, tt.decimals)
	}
}

func TestStatCompact(t *testing.T) {
	assert.Equal(t, "2.46M", StatCompact(2456789))
	assert.Equal(t, "847.6K", StatCompact(847562))
	assert.Equal(t, "125.7K", StatCompact(125678))
	assert.Equal(t, "94.7", StatCompact(94.7))
}

func TestSol(t *testing.T) {
	assert.Equal(t, "1.500", Sol(1_500_000_000, 3))
	assert.Equal(t, "0.000", Sol(1, 3))
	assert.Equal(t, "0.000000001", Sol(1, 9))
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "30s ago"},
		{5 * time.Minute, "5m ago"},
		{3*time.Hour + 10*time.Minute, "3hr ago"},
		{49 * time.Hour, "2d ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeAgo(now.Add(-tt.ago), now))
	}
}

func TestShortAddress(t *testing.T) {
	assert.Equal(t, "J7wR8j...2xKp", ShortAddress("J7wR8jK2xKp9mL3qR5sT7uV9wX1yZ3aB5cD7eF9gH2xKp"))
	assert.Equal(t, "short", ShortAddress("short"))
}
