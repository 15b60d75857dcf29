package roster

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestFold_StripsDiacriticsAndCase(t *testing.T) {
	cases := map[string]string{
		"Téléphone":  "telephone",
		"telephone":  "telephone",
		"  RÉUNION ": "reunion",
		"Données":    "donnees",
		"à":          "a",
		"":           "",
	}
	for input, want := range cases {
		if got := Fold(input); got != want {
			t.Errorf("Fold(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFold_Idempotent(t *testing.T) {
	// GIVEN: Any input, folded once
	// THEN: Folding again is a no-op
	inputs := []string{"Téléphone", "SEMAINE 3", "déjà vu", "plain"}
	for _, input := range inputs {
		once := Fold(input)
		if twice := Fold(once); twice != once {
			t.Errorf("Fold not idempotent for %q: %q != %q", input, twice, once)
		}
	}
}

func TestNormalizeCell_Shapes(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "  Tel  ", "Tel"},
		{"integer float", 42.0, "42"},
		{"fractional float", 8.5, "8.5"},
		{"int", 7, "7"},
		{"bool", true, "true"},
		{"rich text", []excelize.RichTextRun{{Text: "Semaine "}, {Text: "2"}}, "Semaine 2"},
	}
	for _, tc := range cases {
		if got := NormalizeCell(tc.in); got != tc.want {
			t.Errorf("%s: NormalizeCell(%v) = %q, want %q", tc.name, tc.in, got, tc.want)
		}
	}
}
