package bot

import (
	"strconv"
	"strings"
)

// Placeholder is the substitution token every template must contain.
const Placeholder = "{percentage}"

// Callback action tokens. StatsAction builds the parametrized stats_<days>
// family; everything else is a fixed key.
const (
	ActionRetry       = "retry"
	ActionMyStats     = "my_stats"
	ActionGlobalStats = "global_stats"
	ActionEditText    = "edit_text"
	ActionFullStats   = "full_stats"
	ActionCancelEdit  = "cancel_edit"

	statsActionPrefix = "stats_"
)

// StatsAction returns the callback key for a window of the given length.
func StatsAction(days int) string {
	return statsActionPrefix + strconv.Itoa(days)
}

// ParseStatsAction extracts the window length from a stats_<days> key.
// Returns false for any other key or a non-positive window.
func ParseStatsAction(key string) (int, bool) {
	rest, ok := strings.CutPrefix(key, statsActionPrefix)
	if !ok {
		return 0, false
	}
	days, err := strconv.Atoi(rest)
	if err != nil || days <= 0 {
		return 0, false
	}
	return days, true
}

// RenderTemplate substitutes the placeholder with the result value.
func RenderTemplate(tpl string, result int) string {
	return strings.ReplaceAll(tpl, Placeholder, strconv.Itoa(result))
}
