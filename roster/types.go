// Package roster extracts weekly assignment rows from externally authored
// planning workbooks. Spreadsheets arrive in inconsistent human-made layouts;
// this package locates the roster table, normalizes free-text cells and
// produces transient ParsedAssignment rows for the importer to materialize.
package roster

import "github.com/warp/planning-engine/planning"

// ParsedAssignment is one extracted roster row. It exists only for the
// duration of a single import run and is never persisted as-is.
type ParsedAssignment struct {
	WeekOffset     int // 0..3 within the cycle
	EmployeeName   string
	Day            int // 1=Monday .. 6=Saturday
	Start          string
	End            string
	SourceActivity string
	Category       planning.Category
	Note           string
}

// Result is the outcome of a successful extraction.
type Result struct {
	Rows              []ParsedAssignment
	EmptyCellsIgnored int
	// UnknownActivities lists, in first-seen order, the distinct activity
	// texts that fell back to the OTHER category. Set semantics: a label
	// appearing in many rows is listed once.
	UnknownActivities []string
	// EmployeeNames lists the distinct employee names referenced by Rows,
	// in first-seen order.
	EmployeeNames []string
	// Source names the strategy that produced the result.
	Source string

	unknownSeen  map[string]bool
	employeeSeen map[string]bool
}

func newResult(source string) *Result {
	return &Result{
		Source:       source,
		unknownSeen:  make(map[string]bool),
		employeeSeen: make(map[string]bool),
	}
}

// add appends a classified row and maintains the unknown-activity and
// employee-name sets.
func (r *Result) add(row ParsedAssignment) {
	r.Rows = append(r.Rows, row)
	if row.Category == planning.CategoryOther && !r.unknownSeen[row.SourceActivity] {
		r.unknownSeen[row.SourceActivity] = true
		r.UnknownActivities = append(r.UnknownActivities, row.SourceActivity)
	}
	if !r.employeeSeen[row.EmployeeName] {
		r.employeeSeen[row.EmployeeName] = true
		r.EmployeeNames = append(r.EmployeeNames, row.EmployeeName)
	}
}
