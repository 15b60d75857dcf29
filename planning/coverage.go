/*
coverage.go - Needs-vs-assignments reconciliation

PURPOSE:
  Computes, per day/time-slot/category, how many people a week's need
  specification requires versus how many are actually assigned, and the
  resulting gap. Negative gap means understaffed.

TWO QUERY SHAPES:
  CoverageAt:    Point query over (day, start, category) keys. Used by the
                 needs editor to color a single grid cell.
  BuildCoverage: Full-week view over absolute timestamps. Each need slot
                 defines a half-open interval [start, end); every assignment
                 whose interval overlaps it contributes one unit to that
                 slot's assigned count for its category, regardless of how
                 much of the interval overlaps.

PURITY:
  Both functions are pure computations over already-loaded rows. No store
  access, no side effects, safe to call concurrently.

SEE ALSO:
  - store.go: NeedSlotsByWeek / AssignmentsByWeek load the inputs
  - calendar.go: SlotAt materializes the absolute timestamps
*/
package planning

import (
	"sort"
	"time"
)

// Coverage is the reconciled count for one (day, slot, category) cell.
// Gap = Assigned - Required; negative means understaffed.
type Coverage struct {
	Required int
	Assigned int
	Gap      int
}

// CoverageAt reconciles a single (day, start, category) cell. Slots with no
// configured need report Required = 0, so Gap is trivially >= 0.
func CoverageAt(day int, start string, category Category, needs []NeedSlot, assignments []Assignment) Coverage {
	required := 0
	for _, n := range needs {
		if n.Day == day && n.Start == start && n.Category == category {
			required += n.Required
		}
	}

	assigned := 0
	for _, a := range assignments {
		if a.Day == day && a.Start == start && a.Category == category {
			assigned++
		}
	}

	return Coverage{Required: required, Assigned: assigned, Gap: assigned - required}
}

// SlotCoverage is the reconciled state of one need interval across all
// categories present in the week's needs or assignments.
type SlotCoverage struct {
	Start      time.Time
	End        time.Time
	ByCategory map[Category]Coverage
}

// BuildCoverage reconciles a full week. Slots come from the need rows;
// assignments are matched by half-open interval overlap
// (assignment.start < slot.end && assignment.end > slot.start).
// Rows come back sorted by slot start time ascending.
func BuildCoverage(week Week, needs []NeedSlot, assignments []Assignment) ([]SlotCoverage, error) {
	type slotKey struct {
		start time.Time
		end   time.Time
	}
	slots := make(map[slotKey]*SlotCoverage)

	ensure := func(start, end time.Time) *SlotCoverage {
		k := slotKey{start, end}
		if s, ok := slots[k]; ok {
			return s
		}
		s := &SlotCoverage{Start: start, End: end, ByCategory: make(map[Category]Coverage)}
		slots[k] = s
		return s
	}

	for _, need := range needs {
		start, err := SlotAt(week.StartDate, need.Day, need.Start)
		if err != nil {
			return nil, err
		}
		end, err := SlotAt(week.StartDate, need.Day, need.End)
		if err != nil {
			return nil, err
		}
		slot := ensure(start, end)
		cov := slot.ByCategory[need.Category]
		cov.Required += need.Required
		slot.ByCategory[need.Category] = cov
	}

	for _, a := range assignments {
		start, err := SlotAt(week.StartDate, a.Day, a.Start)
		if err != nil {
			return nil, err
		}
		end, err := SlotAt(week.StartDate, a.Day, a.End)
		if err != nil {
			return nil, err
		}
		for _, slot := range slots {
			if start.Before(slot.End) && end.After(slot.Start) {
				cov := slot.ByCategory[a.Category]
				cov.Assigned++
				slot.ByCategory[a.Category] = cov
			}
		}
	}

	rows := make([]SlotCoverage, 0, len(slots))
	for _, slot := range slots {
		for cat, cov := range slot.ByCategory {
			cov.Gap = cov.Assigned - cov.Required
			slot.ByCategory[cat] = cov
		}
		rows = append(rows, *slot)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Start.Before(rows[j].Start) })
	return rows, nil
}
