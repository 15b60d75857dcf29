package roster

import (
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/warp/planning-engine/planning"
)

func TestParseWeekOffset(t *testing.T) {
	cases := []struct {
		in     string
		offset int
		ok     bool
	}{
		{"Semaine 1", 0, true},
		{"semaine3", 2, true},
		{"SEMAINE 4", 3, true},
		{"2", 1, true},
		{"Semaine 5", 0, false},
		{"Semaine", 0, false},
		{"Lundi", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		offset, ok := ParseWeekOffset(tc.in)
		if ok != tc.ok || (ok && offset != tc.offset) {
			t.Errorf("ParseWeekOffset(%q) = (%d, %v), want (%d, %v)", tc.in, offset, ok, tc.offset, tc.ok)
		}
	}
}

func TestIsPotentialName(t *testing.T) {
	for _, name := range []string{"Alice", "Jean-Marc D.", "Bob"} {
		if !IsPotentialName(name) {
			t.Errorf("IsPotentialName(%q) = false, want true", name)
		}
	}
	for _, notName := range []string{"", "Lundi", "SAMEDI", "08:30-12:00", "08h30", "Semaine 2", "Besoin", "Total jour", "x"} {
		if IsPotentialName(notName) {
			t.Errorf("IsPotentialName(%q) = true, want false", notName)
		}
	}
}

func TestFindHeaderRow_DefaultsToRow8(t *testing.T) {
	// No row scores above zero: the empirical default wins.
	g := grid{{"", "", ""}, {"Lundi"}}
	if row := FindHeaderRow(g); row != 8 {
		t.Errorf("FindHeaderRow = %d, want default 8", row)
	}
}

func TestFindHeaderRow_FirstRowReachingMaxWins(t *testing.T) {
	// Rows 2 and 3 both score 2; the first one reaching the max is kept.
	g := grid{
		{"", "", "", "Semaine 1"},
		{"", "", "", "Alice", "Bob"},
		{"", "", "", "Claire", "Denis"},
	}
	if row := FindHeaderRow(g); row != 2 {
		t.Errorf("FindHeaderRow = %d, want 2", row)
	}
	if score := ScoreHeaderRow(g, 2); score != 2 {
		t.Errorf("ScoreHeaderRow(row 2) = %d, want 2", score)
	}
	if score := ScoreHeaderRow(g, 1); score != 0 {
		t.Errorf("ScoreHeaderRow(row 1) = %d, want 0 (reserved word)", score)
	}
}

// weekWorkbook builds the 4-sheet "Semaine N" layout: employee headers on
// row 8 from column D, day labels in column A, slots in column C. Only
// Semaine 1 carries data rows.
func weekWorkbook(t *testing.T) *excelize.File {
	t.Helper()
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", "Semaine 1"); err != nil {
		t.Fatal(err)
	}
	for _, sheet := range []string{"Semaine 2", "Semaine 3", "Semaine 4"} {
		if _, err := f.NewSheet(sheet); err != nil {
			t.Fatal(err)
		}
	}
	for _, sheet := range []string{"Semaine 1", "Semaine 2", "Semaine 3", "Semaine 4"} {
		mustSet(t, f, sheet, "D8", "Alice")
		mustSet(t, f, sheet, "E8", "Bob")
	}
	mustSet(t, f, "Semaine 1", "A9", "Lundi")
	mustSet(t, f, "Semaine 1", "C9", "08:00-08:30")
	mustSet(t, f, "Semaine 1", "D9", "Tel")
	mustSet(t, f, "Semaine 1", "E9", "")
	return f
}

func mustSet(t *testing.T, f *excelize.File, sheet, cell string, value any) {
	t.Helper()
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		t.Fatal(err)
	}
}

func TestExtract_WeekSheets(t *testing.T) {
	// GIVEN: 4 "Semaine N" sheets, one day block Lundi with slot
	//        08:00-08:30, Alice="Tel", Bob=""
	// WHEN: Extracting
	// THEN: One parsed row (Alice, CALL) and one empty cell ignored
	f := weekWorkbook(t)
	defer f.Close()

	res, err := Extract(f, NewClassifier())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Source != "weeks" {
		t.Errorf("Source = %q, want weeks", res.Source)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("len(Rows) = %d, want 1", len(res.Rows))
	}

	row := res.Rows[0]
	if row.EmployeeName != "Alice" || row.WeekOffset != 0 || row.Day != 1 {
		t.Errorf("unexpected row: %+v", row)
	}
	if row.Start != "08:00" || row.End != "08:30" {
		t.Errorf("slot = %s-%s, want 08:00-08:30", row.Start, row.End)
	}
	if row.Category != planning.CategoryCall {
		t.Errorf("Category = %s, want CALL", row.Category)
	}

	if res.EmptyCellsIgnored != 1 {
		t.Errorf("EmptyCellsIgnored = %d, want 1", res.EmptyCellsIgnored)
	}
	if len(res.EmployeeNames) != 1 || res.EmployeeNames[0] != "Alice" {
		t.Errorf("EmployeeNames = %v, want [Alice]", res.EmployeeNames)
	}
	if len(res.UnknownActivities) != 0 {
		t.Errorf("UnknownActivities = %v, want none", res.UnknownActivities)
	}
}

func TestExtract_WeekSheets_DayCarriesForward(t *testing.T) {
	// Day labels merge visually across slot rows: blank day cells keep the
	// current day until the next label.
	f := weekWorkbook(t)
	defer f.Close()

	mustSet(t, f, "Semaine 1", "C10", "08:30-09:00")
	mustSet(t, f, "Semaine 1", "D10", "Visites")
	mustSet(t, f, "Semaine 1", "A11", "Mardi")
	mustSet(t, f, "Semaine 1", "C11", "09:00-09:30")
	mustSet(t, f, "Semaine 1", "E11", "RDV")

	res, err := Extract(f, NewClassifier())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(res.Rows) != 3 {
		t.Fatalf("len(Rows) = %d, want 3", len(res.Rows))
	}
	if res.Rows[1].Day != 1 {
		t.Errorf("carried-forward day = %d, want 1", res.Rows[1].Day)
	}
	if res.Rows[2].Day != 2 || res.Rows[2].EmployeeName != "Bob" {
		t.Errorf("unexpected row after day switch: %+v", res.Rows[2])
	}
}

// dataWorkbook builds the structured "Données" layout.
func dataWorkbook(t *testing.T) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "Données"); err != nil {
		t.Fatal(err)
	}

	headers := []string{"Semaine", "Jour", "Conseiller", "Activité", "Créneau"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		mustSet(t, f, "Données", cell, h)
	}

	rows := [][]string{
		{"Semaine 1", "Lundi", "Alice Dupont", "Tel", "8h30-12h00"},
		{"Semaine 1", "Lundi", "Alice Dupont", "", "14h00-17h30"},   // empty activity
		{"Semaine 1", "Lundi", "Alice Dupont", "Visites", "pas de creneau"}, // broken slot
		{"Semaine 2", "Mardi", "Bob Martin", "Bricolage", "14h00-17h30"},
		{"Semaine 2", "Mercredi", "Bob Martin", "Bricolage", "9h00-12h00"},
	}
	for r, row := range rows {
		for c, value := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			mustSet(t, f, "Données", cell, value)
		}
	}
	return f
}

func TestExtract_DataSheet(t *testing.T) {
	f := dataWorkbook(t)
	defer f.Close()

	res, err := Extract(f, NewClassifier())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Source != "donnees" {
		t.Errorf("Source = %q, want donnees", res.Source)
	}
	if len(res.Rows) != 3 {
		t.Fatalf("len(Rows) = %d, want 3 (broken slot row dropped silently)", len(res.Rows))
	}
	if res.EmptyCellsIgnored != 1 {
		t.Errorf("EmptyCellsIgnored = %d, want 1", res.EmptyCellsIgnored)
	}

	// "Bricolage" appears in two rows but once in the unknown set.
	if len(res.UnknownActivities) != 1 || res.UnknownActivities[0] != "Bricolage" {
		t.Errorf("UnknownActivities = %v, want [Bricolage]", res.UnknownActivities)
	}
	last := res.Rows[len(res.Rows)-1]
	if last.Category != planning.CategoryOther || last.Note != "Excel: Bricolage" {
		t.Errorf("fallback row = %+v", last)
	}

	if len(res.EmployeeNames) != 2 {
		t.Errorf("EmployeeNames = %v, want 2 distinct names", res.EmployeeNames)
	}
}

func TestExtract_DataSheetWinsOverWeekSheets(t *testing.T) {
	// Strategies run in priority order; the structured sheet wins when it
	// yields rows, even if week sheets are present too.
	f := dataWorkbook(t)
	defer f.Close()

	if _, err := f.NewSheet("Semaine 1"); err != nil {
		t.Fatal(err)
	}
	mustSet(t, f, "Semaine 1", "D8", "Claire")
	mustSet(t, f, "Semaine 1", "A9", "Lundi")
	mustSet(t, f, "Semaine 1", "C9", "10h00-10h30")
	mustSet(t, f, "Semaine 1", "D9", "Tel")

	res, err := Extract(f, NewClassifier())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Source != "donnees" {
		t.Errorf("Source = %q, want donnees", res.Source)
	}
}

func TestExtract_NoRecognizableLayout(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	mustSet(t, f, "Sheet1", "A1", "random content")

	_, err := Extract(f, NewClassifier())
	if !errors.Is(err, planning.ErrNoLayout) {
		t.Fatalf("err = %v, want ErrNoLayout", err)
	}
}
