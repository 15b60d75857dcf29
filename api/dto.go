/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/planning-engine/planning"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// CycleDTO represents a planning cycle in API responses.
type CycleDTO struct {
	ID        string `json:"id"`
	Year      int    `json:"year"`
	Number    int    `json:"cycle_number"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Active    bool   `json:"is_active"`
}

// WeekDTO represents one week of a cycle.
type WeekDTO struct {
	ID        string `json:"id"`
	CycleID   string `json:"cycle_id"`
	ISOWeek   int    `json:"iso_week_number"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// EmployeeDTO represents a schedulable employee.
type EmployeeDTO struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Type     string `json:"type"`
	TeamID   string `json:"team_id,omitempty"`
	Active   bool   `json:"is_active"`
}

// NeedSlotDTO represents required staffing for one slot.
type NeedSlotDTO struct {
	ID       string `json:"id"`
	WeekID   string `json:"week_id"`
	Day      int    `json:"day_of_week"`
	Start    string `json:"start_time"`
	End      string `json:"end_time"`
	Category string `json:"category"`
	Required int    `json:"required_count"`
}

// AssignmentDTO represents one scheduled activity.
type AssignmentDTO struct {
	ID         string `json:"id"`
	WeekID     string `json:"week_id"`
	EmployeeID string `json:"employee_id"`
	Day        int    `json:"day_of_week"`
	Start      string `json:"start_time"`
	End        string `json:"end_time"`
	Category   string `json:"category"`
	Note       string `json:"notes,omitempty"`
}

// WeekDetailDTO bundles a week with its needs and assignments, the input of
// the presentation layer's coverage views.
type WeekDetailDTO struct {
	Week        WeekDTO         `json:"week"`
	Needs       []NeedSlotDTO   `json:"needs"`
	Assignments []AssignmentDTO `json:"assignments"`
}

// CoverageCellDTO is the reconciled count for one category within a slot.
type CoverageCellDTO struct {
	Category string `json:"category"`
	Required int    `json:"required"`
	Assigned int    `json:"assigned"`
	Gap      int    `json:"gap"`
}

// CoverageRowDTO is one reconciled time slot.
type CoverageRowDTO struct {
	Start      time.Time         `json:"start_at"`
	End        time.Time         `json:"end_at"`
	ByCategory []CoverageCellDTO `json:"by_category"`
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

// BootstrapCycleRequest creates a cycle and its 4 weeks without an import.
type BootstrapCycleRequest struct {
	Year        int    `json:"year"`
	CycleNumber int    `json:"cycle_number"`
	Monday      string `json:"monday"` // YYYY-MM-DD
}

// NeedsBulkRequest upserts a batch of need slots.
type NeedsBulkRequest struct {
	Needs []NeedSlotRequest `json:"needs"`
}

// NeedSlotRequest is one need slot to upsert.
type NeedSlotRequest struct {
	WeekID   string `json:"week_id"`
	Day      int    `json:"day_of_week"`
	Start    string `json:"start_time"`
	End      string `json:"end_time"`
	Category string `json:"category"`
	Required int    `json:"required_count"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toCycleDTO(c planning.Cycle) CycleDTO {
	return CycleDTO{
		ID:        string(c.ID),
		Year:      c.Year,
		Number:    c.Number,
		StartDate: c.StartDate.Format("2006-01-02"),
		EndDate:   c.EndDate.Format("2006-01-02"),
		Active:    c.Active,
	}
}

func toWeekDTO(w planning.Week) WeekDTO {
	return WeekDTO{
		ID:        string(w.ID),
		CycleID:   string(w.CycleID),
		ISOWeek:   w.ISOWeek,
		StartDate: w.StartDate.Format("2006-01-02"),
		EndDate:   w.EndDate.Format("2006-01-02"),
	}
}

func toEmployeeDTO(e planning.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:       string(e.ID),
		FullName: e.FullName,
		Type:     string(e.Type),
		TeamID:   e.TeamID,
		Active:   e.Active,
	}
}

func toNeedSlotDTO(n planning.NeedSlot) NeedSlotDTO {
	return NeedSlotDTO{
		ID:       n.ID,
		WeekID:   string(n.WeekID),
		Day:      n.Day,
		Start:    n.Start,
		End:      n.End,
		Category: string(n.Category),
		Required: n.Required,
	}
}

func toAssignmentDTO(a planning.Assignment) AssignmentDTO {
	return AssignmentDTO{
		ID:         a.ID,
		WeekID:     string(a.WeekID),
		EmployeeID: string(a.EmployeeID),
		Day:        a.Day,
		Start:      a.Start,
		End:        a.End,
		Category:   string(a.Category),
		Note:       a.Note,
	}
}
