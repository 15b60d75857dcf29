/*
Package planning provides the core workforce-planning domain model.

PURPOSE:
  This package contains the entities and algorithms shared by the import
  pipeline, the coverage reconciler, and the HTTP layer: cycles, weeks,
  employees, need slots and assignments, plus the closed vocabularies
  (activity categories, days of week) everything else validates against.

KEY CONCEPTS IN THIS FILE (types.go):
  - Category: The closed set of activity types, plus the OTHER fallback
  - Cycle: A fixed 4-week planning period starting on a Monday
  - Week: One of the 4 ISO weeks belonging to a cycle
  - Employee: A schedulable person, matched by full name on import
  - NeedSlot: Required headcount for a (week, day, start, category) tuple
  - Assignment: An employee's scheduled activity for a (week, day, start)

DESIGN PRINCIPLES:
  1. Closed vocabularies: days, times and categories are validated sets;
     anything outside them is rejected before it reaches the store
  2. Natural keys: every entity carries the key its upsert conflicts on,
     so re-running an import converges instead of duplicating rows
  3. Type safety: distinct ID types prevent mixing cycle/week/employee ids

SEE ALSO:
  - calendar.go: ISO-week and cycle date math
  - coverage.go: Needs-vs-assignments reconciliation
  - store.go: Persistence interface
*/
package planning

import "time"

// =============================================================================
// ACTIVITY CATEGORIES - Closed vocabulary
// =============================================================================

// Category is an activity type drawn from the closed planning vocabulary.
type Category string

const (
	CategoryVisit    Category = "VISIT"
	CategoryCall     Category = "CALL"
	CategoryRDV      Category = "RDV"
	CategoryLead     Category = "LEAD"
	CategoryAsync    Category = "ASYNC"
	CategoryMeeting  Category = "MEETING"
	CategoryTraining Category = "TRAINING"
	CategoryWFH      Category = "WFH"
	CategoryAbsence  Category = "ABS"

	// CategoryOther is the fallback for activity text that matches no known
	// label. Rows classified OTHER keep the original text in their note.
	CategoryOther Category = "OTHER"
)

// Categories returns the full closed set, fallback included.
func Categories() []Category {
	return []Category{
		CategoryVisit, CategoryCall, CategoryRDV, CategoryLead, CategoryAsync,
		CategoryMeeting, CategoryTraining, CategoryWFH, CategoryAbsence,
		CategoryOther,
	}
}

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	switch c {
	case CategoryVisit, CategoryCall, CategoryRDV, CategoryLead, CategoryAsync,
		CategoryMeeting, CategoryTraining, CategoryWFH, CategoryAbsence,
		CategoryOther:
		return true
	}
	return false
}

// CategoryLabels maps categories to their display labels.
var CategoryLabels = map[Category]string{
	CategoryVisit:    "Visites",
	CategoryCall:     "Téléphone",
	CategoryRDV:      "Rendez-vous",
	CategoryLead:     "Leads",
	CategoryAsync:    "Flux async.",
	CategoryMeeting:  "Réunion",
	CategoryTraining: "Formation",
	CategoryWFH:      "Télétravail",
	CategoryAbsence:  "Absence",
	CategoryOther:    "Autre",
}

// =============================================================================
// DAYS OF WEEK
// =============================================================================

// Days are numbered 1=Monday .. 7=Sunday (ISO). Scheduling covers Monday
// through Saturday only; Sunday never carries assignments.
const (
	DayMonday   = 1
	DaySaturday = 6
	DaySunday   = 7
)

// ValidDay reports whether day is schedulable (Monday..Saturday).
func ValidDay(day int) bool {
	return day >= DayMonday && day <= DaySaturday
}

// DayLabel holds a schedulable day and its display label.
type DayLabel struct {
	Day   int
	Label string
}

// DayLabels returns the schedulable days in order.
func DayLabels() []DayLabel {
	return []DayLabel{
		{1, "Lundi"},
		{2, "Mardi"},
		{3, "Mercredi"},
		{4, "Jeudi"},
		{5, "Vendredi"},
		{6, "Samedi"},
	}
}

// =============================================================================
// EMPLOYEE TYPES
// =============================================================================

// EmployeeType is the closed set of schedulable profile types.
type EmployeeType string

const (
	EmployeeAdvisor   EmployeeType = "conseiller"
	EmployeeTrainee   EmployeeType = "alternant"
	EmployeeFrontDesk EmployeeType = "accueil"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type CycleID string
type WeekID string
type EmployeeID string

// =============================================================================
// ENTITIES
// =============================================================================

// Cycle is a fixed 4-week planning period. Natural key: (Year, Number).
// StartDate must be a Monday; EndDate is StartDate + 27 days. At most one
// cycle is active at a time.
type Cycle struct {
	ID        CycleID
	Year      int
	Number    int
	StartDate time.Time
	EndDate   time.Time
	Active    bool
}

// Week is one of a cycle's 4 weeks. Natural key: (CycleID, ISOWeek).
// StartDate is a Monday, EndDate the following Sunday.
type Week struct {
	ID        WeekID
	CycleID   CycleID
	ISOWeek   int
	StartDate time.Time
	EndDate   time.Time
}

// Employee is a schedulable person. Natural key: FullName, matched by exact
// string equality on import (case preserved, not fuzzy).
type Employee struct {
	ID       EmployeeID
	FullName string
	Type     EmployeeType
	TeamID   string
	Active   bool
}

// NeedSlot is the required headcount for a (week, day, start, category)
// tuple. Upserting the same key overwrites Required.
type NeedSlot struct {
	ID       string
	WeekID   WeekID
	Day      int
	Start    string // "HH:MM"
	End      string // "HH:MM"
	Category Category
	Required int
}

// Assignment is an employee's scheduled activity for a (week, employee,
// day, start) tuple. A second write for the same key overwrites category,
// end time and note.
type Assignment struct {
	ID         string
	WeekID     WeekID
	EmployeeID EmployeeID
	Day        int
	Start      string // "HH:MM"
	End        string // "HH:MM"
	Category   Category
	Note       string
}
