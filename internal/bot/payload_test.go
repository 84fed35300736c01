package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatsAction(t *testing.T) {
	cases := []struct {
		key  string
		days int
		ok   bool
	}{
		{"stats_7", 7, true},
		{"stats_30", 30, true},
		{"stats_3650", 3650, true},
		{"stats_0", 0, false},
		{"stats_-5", 0, false},
		{"stats_", 0, false},
		{"stats_week", 0, false},
		{"retry", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		days, ok := ParseStatsAction(tc.key)
		assert.Equal(t, tc.ok, ok, tc.key)
		assert.Equal(t, tc.days, days, tc.key)
	}
}

func TestStatsActionRoundTrip(t *testing.T) {
	days, ok := ParseStatsAction(StatsAction(365))
	assert.True(t, ok)
	assert.Equal(t, 365, days)
}

func TestRenderTemplate(t *testing.T) {
	assert.Equal(t, "Result: 57%", RenderTemplate("Result: {percentage}%", 57))
	assert.Equal(t, "57 and 57", RenderTemplate("{percentage} and {percentage}", 57))
	assert.Equal(t, "no placeholder", RenderTemplate("no placeholder", 57))
}
