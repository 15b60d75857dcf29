/*
store.go - Persistence interface for the planning domain

PURPOSE:
  Defines the contract between the domain logic and the database. Every
  write is an upsert on the entity's natural key, so materialization is
  idempotent and a re-run after a partial failure self-heals. Different
  implementations can use SQLite or in-memory storage.

NATURAL KEYS:
  cycles:      (year, cycle_number)
  weeks:       (cycle_id, iso_week_number)
  employees:   full_name
  assignments: (week_id, employee_id, day_of_week, start_time)
  need_slots:  (week_id, day_of_week, start_time, category)

ORDERING CONTRACT:
  The importer writes cycle -> weeks -> employees -> assignments and relies
  on WeeksByCycle returning weeks ordered by start date so week offsets
  0..3 resolve positionally. It re-reads persisted rows to obtain ids
  rather than trusting ids held across writes.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - planning/store/memory.go: In-memory for testing/dev

SEE ALSO:
  - importer/importer.go: The only writer
  - coverage.go: Read-only consumer of needs/assignments
*/
package planning

import "context"

// Store handles persistence of planning entities. All Upsert* methods
// conflict on the natural keys documented above and overwrite the
// non-key attributes (last write wins, never a duplicate row).
type Store interface {
	// UpsertCycle writes a cycle keyed by (year, number) and returns the
	// persisted row, id included.
	UpsertCycle(ctx context.Context, c Cycle) (Cycle, error)

	// GetCycle returns the cycle with the given id, or ErrNotFound.
	GetCycle(ctx context.Context, id CycleID) (Cycle, error)

	// ListCycles returns all cycles, active first, then newest first.
	ListCycles(ctx context.Context) ([]Cycle, error)

	// ActivateCycle marks one cycle active and deactivates all others.
	// Returns ErrNotFound if the cycle doesn't exist.
	ActivateCycle(ctx context.Context, id CycleID) error

	// UpsertWeeks writes weeks keyed by (cycle, ISO week number).
	UpsertWeeks(ctx context.Context, weeks []Week) error

	// WeeksByCycle returns a cycle's weeks ordered by start date ascending.
	WeeksByCycle(ctx context.Context, cycleID CycleID) ([]Week, error)

	// GetWeek returns the week with the given id, or ErrNotFound.
	GetWeek(ctx context.Context, id WeekID) (Week, error)

	// UpsertEmployees writes employees keyed by full name.
	UpsertEmployees(ctx context.Context, employees []Employee) error

	// EmployeesByName returns the employees whose full name exactly matches
	// one of names. Missing names are simply absent from the result.
	EmployeesByName(ctx context.Context, names []string) ([]Employee, error)

	// ListEmployees returns employees ordered by full name. Inactive ones
	// are included only when requested.
	ListEmployees(ctx context.Context, includeInactive bool) ([]Employee, error)

	// UpsertAssignments writes assignments keyed by
	// (week, employee, day, start time).
	UpsertAssignments(ctx context.Context, assignments []Assignment) error

	// AssignmentsByWeek returns a week's assignments ordered by day then
	// start time.
	AssignmentsByWeek(ctx context.Context, weekID WeekID) ([]Assignment, error)

	// UpsertNeedSlots writes need slots keyed by
	// (week, day, start time, category).
	UpsertNeedSlots(ctx context.Context, needs []NeedSlot) error

	// NeedSlotsByWeek returns a week's need slots ordered by day then
	// start time.
	NeedSlotsByWeek(ctx context.Context, weekID WeekID) ([]NeedSlot, error)
}
