/*
Package importer materializes extracted roster rows into the store.

PURPOSE:
  Turns a workbook upload plus a target 4-week period into persisted
  cycles, weeks, employees and assignments, and reports what happened in
  an ImportSummary.

WRITE ORDER (fixed, cannot be reordered):
  1. Upsert the cycle, keyed (year, cycle number)
  2. Upsert its 4 weeks, keyed (cycle, ISO week number)
  3. Re-read the persisted weeks ordered by start date. Materialization
     never trusts ids held across the two writes.
  4. Create missing employees (exact full-name match; names containing
     "alternant" get the trainee type, everyone else the advisor type)
  5. Resolve each parsed row to a week id and employee id and upsert the
     assignments, keyed (week, employee, day, start time)

FAILURE MODEL:
  Any write failure aborts the remaining steps. There is NO compensating
  rollback: a cycle/weeks pair may persist even if the assignment upsert
  fails later. Every write is a natural-key upsert, so re-running the same
  import after a partial failure converges instead of duplicating rows.

SEE ALSO:
  - roster/extract.go: Produces the parsed rows
  - planning/store.go: The persistence contract consumed here
*/
package importer

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/warp/planning-engine/planning"
	"github.com/warp/planning-engine/roster"
)

// Period describes the 4-week cycle an import targets. Monday must be the
// cycle's starting Monday.
type Period struct {
	Monday      time.Time
	CycleNumber int
	Year        int
	TeamID      string
}

// Summary is the single terminal outcome of a successful import.
type Summary struct {
	EmployeesCreated     int              `json:"employees_created"`
	EmployeesReused      int              `json:"employees_reused"`
	AssignmentsImported  int              `json:"assignments_imported"`
	EmptyCellsIgnored    int              `json:"empty_cells_ignored"`
	UnknownActivityCount int              `json:"unknown_activities_count"`
	UnknownActivities    []string         `json:"unknown_activities"`
	CycleID              planning.CycleID `json:"cycle_id"`
	WeekISONumbers       []int            `json:"week_iso_numbers"`
}

// Importer runs the extract-classify-materialize pipeline. The pipeline is
// synchronous and single-threaded per import; each run operates on its own
// transient parsed rows, so one Importer serves concurrent requests.
type Importer struct {
	store      planning.Store
	classifier *roster.Classifier
}

func New(store planning.Store) *Importer {
	return &Importer{store: store, classifier: roster.NewClassifier()}
}

// Import decodes the workbook payload, extracts its roster rows and
// materializes them for the given period.
func (imp *Importer) Import(ctx context.Context, workbook []byte, p Period) (*Summary, error) {
	f, err := excelize.OpenReader(bytes.NewReader(workbook))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	res, err := roster.Extract(f, imp.classifier)
	if err != nil {
		return nil, err
	}
	return imp.Materialize(ctx, res, p)
}

// Materialize performs the idempotent write sequence for already-extracted
// rows. See the package comment for ordering and failure semantics.
func (imp *Importer) Materialize(ctx context.Context, res *roster.Result, p Period) (*Summary, error) {
	if !planning.IsMonday(p.Monday) {
		return nil, fmt.Errorf("%w: got %s", planning.ErrNotMonday, p.Monday.Format("2006-01-02"))
	}

	cycle, err := imp.store.UpsertCycle(ctx, planning.Cycle{
		Year:      p.Year,
		Number:    p.CycleNumber,
		StartDate: p.Monday,
		EndDate:   planning.CycleEnd(p.Monday),
		Active:    false,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert cycle: %w", err)
	}

	weeks := planning.CycleWeeks(cycle.ID, p.Monday)
	if err := imp.store.UpsertWeeks(ctx, weeks); err != nil {
		return nil, fmt.Errorf("upsert weeks: %w", err)
	}

	persisted, err := imp.store.WeeksByCycle(ctx, cycle.ID)
	if err != nil {
		return nil, fmt.Errorf("re-read weeks: %w", err)
	}
	if len(persisted) < 4 {
		return nil, fmt.Errorf("re-read weeks: expected 4, got %d", len(persisted))
	}

	created, reused, employeeIDs, err := imp.ensureEmployees(ctx, res.EmployeeNames, p.TeamID)
	if err != nil {
		return nil, err
	}

	assignments, dropped := resolveAssignments(res.Rows, persisted, employeeIDs)
	if dropped > 0 {
		// Accepted observability gap: dropped rows don't appear in the
		// summary, but an operator can still spot them in the logs.
		log.Printf("import: dropped %d rows referencing unresolved employees/weeks", dropped)
	}
	if len(assignments) == 0 {
		return nil, planning.ErrNoAssignments
	}

	if err := imp.store.UpsertAssignments(ctx, assignments); err != nil {
		return nil, fmt.Errorf("upsert assignments: %w", err)
	}

	isoNumbers := make([]int, 0, len(weeks))
	for _, w := range weeks {
		isoNumbers = append(isoNumbers, w.ISOWeek)
	}

	return &Summary{
		EmployeesCreated:     created,
		EmployeesReused:      reused,
		AssignmentsImported:  len(assignments),
		EmptyCellsIgnored:    res.EmptyCellsIgnored,
		UnknownActivityCount: len(res.UnknownActivities),
		UnknownActivities:    res.UnknownActivities,
		CycleID:              cycle.ID,
		WeekISONumbers:       isoNumbers,
	}, nil
}

// ensureEmployees creates the employees missing from the store and returns
// the created/reused counts plus the full name-to-id map.
func (imp *Importer) ensureEmployees(ctx context.Context, names []string, teamID string) (created, reused int, ids map[string]planning.EmployeeID, err error) {
	existing, err := imp.store.EmployeesByName(ctx, names)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("look up employees: %w", err)
	}

	known := make(map[string]bool, len(existing))
	for _, e := range existing {
		known[e.FullName] = true
	}

	var missing []planning.Employee
	for _, name := range names {
		if known[name] {
			continue
		}
		missing = append(missing, planning.Employee{
			FullName: name,
			Type:     inferEmployeeType(name),
			TeamID:   teamID,
			Active:   true,
		})
	}
	if len(missing) > 0 {
		if err := imp.store.UpsertEmployees(ctx, missing); err != nil {
			return 0, 0, nil, fmt.Errorf("create employees: %w", err)
		}
	}

	all, err := imp.store.EmployeesByName(ctx, names)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("re-read employees: %w", err)
	}
	ids = make(map[string]planning.EmployeeID, len(all))
	for _, e := range all {
		ids[e.FullName] = e.ID
	}

	return len(missing), len(names) - len(missing), ids, nil
}

// inferEmployeeType applies the trainee name heuristic.
func inferEmployeeType(name string) planning.EmployeeType {
	if strings.Contains(strings.ToLower(name), "alternant") {
		return planning.EmployeeTrainee
	}
	return planning.EmployeeAdvisor
}

// resolveAssignments binds parsed rows to persisted week and employee ids.
// Rows whose employee or week cannot be resolved are dropped.
func resolveAssignments(rows []roster.ParsedAssignment, weeks []planning.Week, employeeIDs map[string]planning.EmployeeID) ([]planning.Assignment, int) {
	assignments := make([]planning.Assignment, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		employeeID, ok := employeeIDs[row.EmployeeName]
		if !ok || row.WeekOffset < 0 || row.WeekOffset >= len(weeks) {
			dropped++
			continue
		}
		assignments = append(assignments, planning.Assignment{
			WeekID:     weeks[row.WeekOffset].ID,
			EmployeeID: employeeID,
			Day:        row.Day,
			Start:      row.Start,
			End:        row.End,
			Category:   row.Category,
			Note:       row.Note,
		})
	}
	return assignments, dropped
}
