/*
extract.go - Workbook table extraction

PURPOSE:
  Locates the roster table inside a workbook and turns it into
  ParsedAssignment rows. Two competing layout conventions exist in the
  wild, so extraction is a prioritized list of strategies tried in order;
  the first strategy producing a non-empty row set wins.

STRATEGIES:
  dataSheetStrategy:  A structured sheet named "Données" with one row per
                      assignment and a header row naming the week / day /
                      employee / activity / slot columns. Header detection
                      scans the first 25 rows for a row resolving all five
                      keyword columns.
  weekSheetStrategy:  Four per-week sheets named "Semaine 1".."Semaine 4",
                      one grid each: day labels in column 1 (carried
                      forward across merged blanks), slots in column 3,
                      one employee per column from column 4 on. The header
                      row is found by scoring plausible person names per
                      row; ties break to the first row reaching the max,
                      default row 8 when nothing scores.

ERROR CONTRACT:
  Extraction never fails on malformed content inside a recognized layout;
  bad rows are skipped. Only when no strategy recognizes any header/sheet
  at all does Extract return planning.ErrNoLayout.

SEE ALSO:
  - classify.go: Activity categorization for extracted cells
  - timeslot.go: Slot parsing
  - importer/importer.go: Materializes the extracted rows
*/
package roster

import (
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/warp/planning-engine/planning"
)

// dayNames maps folded French day names to ISO day numbers. Built once,
// never mutated.
var dayNames = map[string]int{
	"lundi":    1,
	"mardi":    2,
	"mercredi": 3,
	"jeudi":    4,
	"vendredi": 5,
	"samedi":   6,
	"dimanche": 7,
}

var (
	weekOffsetPattern = regexp.MustCompile(`(?:semaine\s*)?([1-4])\b`)
	timeLikePattern   = regexp.MustCompile(`^\d{2}[:h]\d{2}`)
)

// weekSheetPatterns matches sheet names "Semaine 1".."Semaine 4"; the index
// in the slice is the week offset.
var weekSheetPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)semaine\s*1`),
	regexp.MustCompile(`(?i)semaine\s*2`),
	regexp.MustCompile(`(?i)semaine\s*3`),
	regexp.MustCompile(`(?i)semaine\s*4`),
}

// =============================================================================
// EXTRACTION ENTRY POINT
// =============================================================================

// Strategy is one layout convention. TryExtract returns nil when the
// workbook doesn't carry the strategy's layout at all; a non-nil Result
// with zero rows means the layout was recognized but held no data.
type Strategy interface {
	Name() string
	TryExtract(f *excelize.File) (*Result, error)
}

// Extract runs the known strategies in priority order and returns the first
// non-empty result. If a layout was recognized but yielded no rows, that
// empty result is returned; if nothing was recognized, planning.ErrNoLayout.
func Extract(f *excelize.File, classifier *Classifier) (*Result, error) {
	strategies := []Strategy{
		&dataSheetStrategy{classifier: classifier},
		&weekSheetStrategy{classifier: classifier},
	}

	var recognized *Result
	for _, s := range strategies {
		res, err := s.TryExtract(f)
		if err != nil {
			return nil, err
		}
		if res == nil {
			continue
		}
		if len(res.Rows) > 0 {
			return res, nil
		}
		if recognized == nil {
			recognized = res
		}
	}
	if recognized != nil {
		return recognized, nil
	}
	return nil, planning.ErrNoLayout
}

// =============================================================================
// SHARED PARSING HELPERS
// =============================================================================

// ParseWeekOffset parses "Semaine 3" (or a bare "3") into the 0-based week
// offset within the cycle.
func ParseWeekOffset(raw string) (int, bool) {
	m := weekOffsetPattern.FindStringSubmatch(Fold(raw))
	if m == nil {
		return 0, false
	}
	return int(m[1][0]-'0') - 1, true
}

// DayNumber maps a day-name cell to its ISO day number, 0 when unknown.
func DayNumber(raw string) int {
	return dayNames[Fold(raw)]
}

// IsPotentialName reports whether header-row text plausibly names a person:
// non-empty, not a day name, not a time pattern, free of reserved roster
// words, at least two characters.
func IsPotentialName(raw string) bool {
	v := Fold(raw)
	if v == "" {
		return false
	}
	if _, isDay := dayNames[v]; isDay {
		return false
	}
	if timeLikePattern.MatchString(v) {
		return false
	}
	for _, reserved := range []string{"semaine", "besoin", "total"} {
		if strings.Contains(v, reserved) {
			return false
		}
	}
	return len([]rune(v)) >= 2
}

// =============================================================================
// GRID ACCESS
// =============================================================================

// grid is a 1-based view over a sheet's cell values. Out-of-range reads
// return "", mirroring how spreadsheet readers treat absent cells.
type grid [][]string

func sheetGrid(f *excelize.File, sheet string) (grid, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	return grid(rows), nil
}

func (g grid) rowCount() int { return len(g) }

func (g grid) cell(row, col int) string {
	if row < 1 || row > len(g) {
		return ""
	}
	cells := g[row-1]
	if col < 1 || col > len(cells) {
		return ""
	}
	return NormalizeCell(cells[col-1])
}

// =============================================================================
// STRATEGY A - Structured data sheet
// =============================================================================

const dataHeaderScanRows = 25

type dataColumns struct {
	week     int
	day      int
	employee int
	activity int
	slot     int
}

type dataSheetStrategy struct {
	classifier *Classifier
}

func (s *dataSheetStrategy) Name() string { return "donnees" }

func (s *dataSheetStrategy) TryExtract(f *excelize.File) (*Result, error) {
	sheet := findDataSheet(f)
	if sheet == "" {
		return nil, nil
	}
	g, err := sheetGrid(f, sheet)
	if err != nil {
		return nil, err
	}

	headerRow, cols := findDataColumns(g)
	if headerRow < 0 {
		return nil, nil
	}

	res := newResult(s.Name())
	for r := headerRow + 1; r <= g.rowCount(); r++ {
		weekOffset, okWeek := ParseWeekOffset(g.cell(r, cols.week))
		day := DayNumber(g.cell(r, cols.day))
		name := g.cell(r, cols.employee)
		slot, okSlot := ParseTimeRange(g.cell(r, cols.slot))

		// Stray/incomplete rows are expected in hand-made sheets: drop
		// silently, no counter.
		if !okWeek || !planning.ValidDay(day) || name == "" || !okSlot {
			continue
		}

		activity := g.cell(r, cols.activity)
		if activity == "" {
			res.EmptyCellsIgnored++
			continue
		}

		c := s.classifier.Classify(activity)
		res.add(ParsedAssignment{
			WeekOffset:     weekOffset,
			EmployeeName:   name,
			Day:            day,
			Start:          slot.Start,
			End:            slot.End,
			SourceActivity: c.SourceActivity,
			Category:       c.Category,
			Note:           c.Note,
		})
	}
	return res, nil
}

// findDataSheet returns the sheet whose folded name equals "donnees",
// falling back to the first whose name contains it.
func findDataSheet(f *excelize.File) string {
	var partial string
	for _, name := range f.GetSheetList() {
		folded := Fold(name)
		if folded == "donnees" {
			return name
		}
		if partial == "" && strings.Contains(folded, "donnees") {
			partial = name
		}
	}
	return partial
}

// findDataColumns scans the first 25 rows for a header row resolving all
// five keyword columns. Returns (-1, _) when none does.
func findDataColumns(g grid) (int, dataColumns) {
	maxScan := dataHeaderScanRows
	if g.rowCount() < maxScan {
		maxScan = g.rowCount()
	}

	for r := 1; r <= maxScan; r++ {
		cols := dataColumns{
			week:     columnByKeywords(g, r, "semaine"),
			day:      columnByKeywords(g, r, "jour"),
			employee: columnByKeywords(g, r, "conseiller", "employe", "employee", "nom"),
			activity: columnByKeywords(g, r, "activite"),
			slot:     columnByKeywords(g, r, "creneau", "horaire"),
		}
		if cols.week > 0 && cols.day > 0 && cols.employee > 0 && cols.activity > 0 && cols.slot > 0 {
			return r, cols
		}
	}
	return -1, dataColumns{}
}

// columnByKeywords returns the first column in the row whose folded header
// contains one of the keywords, 0 when none matches. Headers narrower than
// 12 columns are still scanned across that minimum width.
func columnByKeywords(g grid, row int, keywords ...string) int {
	width := 12
	if row >= 1 && row <= len(g) && len(g[row-1]) > width {
		width = len(g[row-1])
	}
	for c := 1; c <= width; c++ {
		header := Fold(g.cell(row, c))
		if header == "" {
			continue
		}
		for _, kw := range keywords {
			if strings.Contains(header, Fold(kw)) {
				return c
			}
		}
	}
	return 0
}

// =============================================================================
// STRATEGY B - Per-week sheets with scored header detection
// =============================================================================

const (
	weekHeaderScanRows   = 40
	weekNameColumnFirst  = 4
	weekNameColumnLast   = 40
	weekDefaultHeaderRow = 8
	weekDayColumn        = 1
	weekSlotColumn       = 3
)

type weekSheetStrategy struct {
	classifier *Classifier
}

func (s *weekSheetStrategy) Name() string { return "weeks" }

func (s *weekSheetStrategy) TryExtract(f *excelize.File) (*Result, error) {
	sheets := findWeekSheets(f)
	if len(sheets) == 0 {
		return nil, nil
	}

	res := newResult(s.Name())
	for _, entry := range sheets {
		g, err := sheetGrid(f, entry.sheet)
		if err != nil {
			return nil, err
		}

		headerRow := FindHeaderRow(g)
		employees := employeeColumns(g, headerRow)
		if len(employees) == 0 {
			continue
		}

		// Day labels merge visually across several slot rows; carry the
		// current day forward across blank day cells.
		currentDay := 0
		for r := headerRow + 1; r <= g.rowCount(); r++ {
			if d := DayNumber(g.cell(r, weekDayColumn)); d != 0 {
				currentDay = d
			}

			slot, ok := ParseTimeRange(g.cell(r, weekSlotColumn))
			if !ok || !planning.ValidDay(currentDay) {
				continue
			}

			for _, emp := range employees {
				raw := g.cell(r, emp.col)
				if raw == "" {
					res.EmptyCellsIgnored++
					continue
				}

				c := s.classifier.Classify(raw)
				res.add(ParsedAssignment{
					WeekOffset:     entry.offset,
					EmployeeName:   emp.name,
					Day:            currentDay,
					Start:          slot.Start,
					End:            slot.End,
					SourceActivity: c.SourceActivity,
					Category:       c.Category,
					Note:           c.Note,
				})
			}
		}
	}
	return res, nil
}

type weekSheet struct {
	offset int
	sheet  string
}

// findWeekSheets returns up to 4 sheets matching "Semaine 1".."Semaine 4",
// ordered by the week index embedded in the name. The first sheet matching
// an index wins.
func findWeekSheets(f *excelize.File) []weekSheet {
	byOffset := make(map[int]string, 4)
	for _, name := range f.GetSheetList() {
		for offset, pattern := range weekSheetPatterns {
			if pattern.MatchString(name) {
				if _, taken := byOffset[offset]; !taken {
					byOffset[offset] = name
				}
				break
			}
		}
	}

	var sheets []weekSheet
	for offset := 0; offset < 4; offset++ {
		if name, ok := byOffset[offset]; ok {
			sheets = append(sheets, weekSheet{offset: offset, sheet: name})
		}
	}
	return sheets
}

// ScoreHeaderRow counts the cells in columns 4..40 of a row that look like
// plausible person names. Kept as an explicit function so the heuristic's
// tie-breaks are independently verifiable.
func ScoreHeaderRow(g grid, row int) int {
	score := 0
	for c := weekNameColumnFirst; c <= weekNameColumnLast; c++ {
		if IsPotentialName(g.cell(row, c)) {
			score++
		}
	}
	return score
}

// FindHeaderRow scans the first 40 rows and returns the one with the
// highest name score. The first row reaching the maximum wins; row 8 is
// the default when no row scores above zero.
func FindHeaderRow(g grid) int {
	bestRow := weekDefaultHeaderRow
	bestScore := 0

	maxScan := weekHeaderScanRows
	if g.rowCount() < maxScan {
		maxScan = g.rowCount()
	}
	for r := 1; r <= maxScan; r++ {
		if score := ScoreHeaderRow(g, r); score > bestScore {
			bestScore = score
			bestRow = r
		}
	}
	return bestRow
}

type employeeColumn struct {
	col  int
	name string
}

// employeeColumns returns every column of the header row whose text passes
// the plausible-name test; the header text is the employee name.
func employeeColumns(g grid, headerRow int) []employeeColumn {
	var cols []employeeColumn
	for c := weekNameColumnFirst; c <= weekNameColumnLast; c++ {
		text := g.cell(headerRow, c)
		if IsPotentialName(text) {
			cols = append(cols, employeeColumn{col: c, name: text})
		}
	}
	return cols
}
