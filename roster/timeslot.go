package roster

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// =============================================================================
// TIME-SLOT PARSING
// =============================================================================

// Roster authors write slots as "8h30-12h00", "08:30 à 12:00", "8:30 a 12:00".
// After folding, "à" becomes "a" and every "h" separator is rewritten to ":",
// so a single pattern covers the whole family.
var (
	timeRangePattern  = regexp.MustCompile(`(\d{1,2}:\d{2})\s*[-a]\s*(\d{1,2}:\d{2})`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// TimeRange is a parsed (start, end) pair in canonical "HH:MM" 24-hour form.
type TimeRange struct {
	Start string
	End   string
}

// ParseTimeRange extracts a time range from free-text cell content.
// Returns false on no match, never panics. No end > start validation is
// performed here; that is a downstream concern.
func ParseTimeRange(raw string) (TimeRange, bool) {
	value := strings.ReplaceAll(Fold(raw), "h", ":")
	value = whitespacePattern.ReplaceAllString(value, " ")

	m := timeRangePattern.FindStringSubmatch(value)
	if m == nil {
		return TimeRange{}, false
	}
	return TimeRange{Start: padHour(m[1]), End: padHour(m[2])}, true
}

// padHour zero-pads the hour of an "H:MM" token to two digits.
func padHour(t string) string {
	parts := strings.SplitN(t, ":", 2)
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return t
	}
	return fmt.Sprintf("%02d:%s", h, parts[1])
}
