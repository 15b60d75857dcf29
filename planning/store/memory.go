// Package store provides planning.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/warp/planning-engine/planning"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	cycles      map[cycleKey]planning.Cycle
	weeks       map[weekKey]planning.Week
	employees   map[string]planning.Employee
	assignments map[assignmentKey]planning.Assignment
	needs       map[needKey]planning.NeedSlot
}

type cycleKey struct {
	Year   int
	Number int
}

type weekKey struct {
	CycleID planning.CycleID
	ISOWeek int
}

type assignmentKey struct {
	WeekID     planning.WeekID
	EmployeeID planning.EmployeeID
	Day        int
	Start      string
}

type needKey struct {
	WeekID   planning.WeekID
	Day      int
	Start    string
	Category planning.Category
}

func NewMemory() *Memory {
	return &Memory{
		cycles:      make(map[cycleKey]planning.Cycle),
		weeks:       make(map[weekKey]planning.Week),
		employees:   make(map[string]planning.Employee),
		assignments: make(map[assignmentKey]planning.Assignment),
		needs:       make(map[needKey]planning.NeedSlot),
	}
}

var _ planning.Store = (*Memory)(nil)

// =============================================================================
// CYCLES
// =============================================================================

func (m *Memory) UpsertCycle(_ context.Context, c planning.Cycle) (planning.Cycle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := cycleKey{Year: c.Year, Number: c.Number}
	if existing, ok := m.cycles[k]; ok {
		c.ID = existing.ID // conflicting upsert keeps the row's identity
	} else {
		c.ID = planning.CycleID(uuid.NewString())
	}
	m.cycles[k] = c
	return c, nil
}

func (m *Memory) GetCycle(_ context.Context, id planning.CycleID) (planning.Cycle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.cycles {
		if c.ID == id {
			return c, nil
		}
	}
	return planning.Cycle{}, planning.ErrNotFound
}

func (m *Memory) ListCycles(_ context.Context) ([]planning.Cycle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cycles := make([]planning.Cycle, 0, len(m.cycles))
	for _, c := range m.cycles {
		cycles = append(cycles, c)
	}
	sort.Slice(cycles, func(i, j int) bool {
		if cycles[i].Active != cycles[j].Active {
			return cycles[i].Active
		}
		if cycles[i].Year != cycles[j].Year {
			return cycles[i].Year > cycles[j].Year
		}
		return cycles[i].Number > cycles[j].Number
	})
	return cycles, nil
}

func (m *Memory) ActivateCycle(_ context.Context, id planning.CycleID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	found := false
	for k, c := range m.cycles {
		c.Active = c.ID == id
		if c.Active {
			found = true
		}
		m.cycles[k] = c
	}
	if !found {
		return planning.ErrNotFound
	}
	return nil
}

// =============================================================================
// WEEKS
// =============================================================================

func (m *Memory) UpsertWeeks(_ context.Context, weeks []planning.Week) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range weeks {
		k := weekKey{CycleID: w.CycleID, ISOWeek: w.ISOWeek}
		if existing, ok := m.weeks[k]; ok {
			w.ID = existing.ID
		} else {
			w.ID = planning.WeekID(uuid.NewString())
		}
		m.weeks[k] = w
	}
	return nil
}

func (m *Memory) WeeksByCycle(_ context.Context, cycleID planning.CycleID) ([]planning.Week, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var weeks []planning.Week
	for _, w := range m.weeks {
		if w.CycleID == cycleID {
			weeks = append(weeks, w)
		}
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].StartDate.Before(weeks[j].StartDate) })
	return weeks, nil
}

func (m *Memory) GetWeek(_ context.Context, id planning.WeekID) (planning.Week, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, w := range m.weeks {
		if w.ID == id {
			return w, nil
		}
	}
	return planning.Week{}, planning.ErrNotFound
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (m *Memory) UpsertEmployees(_ context.Context, employees []planning.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range employees {
		if existing, ok := m.employees[e.FullName]; ok {
			e.ID = existing.ID
		} else {
			e.ID = planning.EmployeeID(uuid.NewString())
		}
		m.employees[e.FullName] = e
	}
	return nil
}

func (m *Memory) EmployeesByName(_ context.Context, names []string) ([]planning.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var employees []planning.Employee
	for _, name := range names {
		if e, ok := m.employees[name]; ok {
			employees = append(employees, e)
		}
	}
	return employees, nil
}

func (m *Memory) ListEmployees(_ context.Context, includeInactive bool) ([]planning.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var employees []planning.Employee
	for _, e := range m.employees {
		if !includeInactive && !e.Active {
			continue
		}
		employees = append(employees, e)
	}
	sort.Slice(employees, func(i, j int) bool { return employees[i].FullName < employees[j].FullName })
	return employees, nil
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

func (m *Memory) UpsertAssignments(_ context.Context, assignments []planning.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range assignments {
		k := assignmentKey{WeekID: a.WeekID, EmployeeID: a.EmployeeID, Day: a.Day, Start: a.Start}
		if existing, ok := m.assignments[k]; ok {
			a.ID = existing.ID
		} else {
			a.ID = uuid.NewString()
		}
		m.assignments[k] = a
	}
	return nil
}

func (m *Memory) AssignmentsByWeek(_ context.Context, weekID planning.WeekID) ([]planning.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var assignments []planning.Assignment
	for _, a := range m.assignments {
		if a.WeekID == weekID {
			assignments = append(assignments, a)
		}
	}
	sort.Slice(assignments, func(i, j int) bool {
		if assignments[i].Day != assignments[j].Day {
			return assignments[i].Day < assignments[j].Day
		}
		return assignments[i].Start < assignments[j].Start
	})
	return assignments, nil
}

// =============================================================================
// NEED SLOTS
// =============================================================================

func (m *Memory) UpsertNeedSlots(_ context.Context, needs []planning.NeedSlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, n := range needs {
		k := needKey{WeekID: n.WeekID, Day: n.Day, Start: n.Start, Category: n.Category}
		if existing, ok := m.needs[k]; ok {
			n.ID = existing.ID
		} else {
			n.ID = uuid.NewString()
		}
		m.needs[k] = n
	}
	return nil
}

func (m *Memory) NeedSlotsByWeek(_ context.Context, weekID planning.WeekID) ([]planning.NeedSlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var needs []planning.NeedSlot
	for _, n := range m.needs {
		if n.WeekID == weekID {
			needs = append(needs, n)
		}
	}
	sort.Slice(needs, func(i, j int) bool {
		if needs[i].Day != needs[j].Day {
			return needs[i].Day < needs[j].Day
		}
		return needs[i].Start < needs[j].Start
	})
	return needs, nil
}

// Counts returns the current row counts per table, used by idempotence tests.
func (m *Memory) Counts() (cycles, weeks, employees, assignments, needs int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cycles), len(m.weeks), len(m.employees), len(m.assignments), len(m.needs)
}
