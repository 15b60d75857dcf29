package roster

import "testing"

func TestParseTimeRange_AcceptedFormats(t *testing.T) {
	cases := []struct {
		in    string
		start string
		end   string
	}{
		{"8h30-12h00", "08:30", "12:00"},
		{"08:30 à 12:00", "08:30", "12:00"},
		{"8:30 a 12:00", "08:30", "12:00"},
		{"08h00 - 08h30", "08:00", "08:30"},
		{"14H00-17H30", "14:00", "17:30"},
		{"  9h00  -  9h30  ", "09:00", "09:30"},
	}
	for _, tc := range cases {
		slot, ok := ParseTimeRange(tc.in)
		if !ok {
			t.Errorf("ParseTimeRange(%q): no match", tc.in)
			continue
		}
		if slot.Start != tc.start || slot.End != tc.end {
			t.Errorf("ParseTimeRange(%q) = %v, want {%s %s}", tc.in, slot, tc.start, tc.end)
		}
	}
}

func TestParseTimeRange_RejectsNonSlots(t *testing.T) {
	// Non-matching input returns ok=false, never panics.
	for _, in := range []string{"", "Lundi", "Alice", "8h30", "total", "12:00"} {
		if _, ok := ParseTimeRange(in); ok {
			t.Errorf("ParseTimeRange(%q): unexpected match", in)
		}
	}
}
