package planning

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoLayout is returned when neither extraction strategy recognizes
	// the workbook. Fatal: the import aborts before any write.
	ErrNoLayout = errors.New("no recognizable layout")

	// ErrNoAssignments is returned when extraction succeeded but no parsed
	// row survived resolution. The cycle and weeks written before this
	// point deliberately persist (natural-key upserts make a re-run converge).
	ErrNoAssignments = errors.New("no usable assignments in workbook")

	// ErrNotMonday is returned when a cycle start date is not a Monday.
	ErrNotMonday = errors.New("cycle start date must be a Monday")

	// ErrNotFound is returned when a referenced entity doesn't exist.
	ErrNotFound = errors.New("not found")
)

// IsClientError returns true if the error is due to invalid client input
// rather than a store failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNoLayout) ||
		errors.Is(err, ErrNoAssignments) ||
		errors.Is(err, ErrNotMonday)
}
