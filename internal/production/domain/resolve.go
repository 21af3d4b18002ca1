package production

import "errors"

var (
	// ErrNoCurrentAssignment is returned when no open assignment exists for
	// a turbine.
	ErrNoCurrentAssignment = errors.New("production: no current operator assignment")
	// ErrMultipleCurrentAssignments flags a data-integrity anomaly: more
	// than one open assignment for the same turbine. The caller must not
	// pick one silently.
	ErrMultipleCurrentAssignments = errors.New("production: multiple current operator assignments")
)

// CurrentAssignment resolves the currently responsible operator assignment
// from a turbine's assignment history: the single record with no end date.
// The temporal join lives here, as an explicit function, because its edge
// cases (no open record, several open records) are real data problems that
// need their own tests.
func CurrentAssignment(assignments []OperatorAssignment) (*OperatorAssignment, error) {
	var current *OperatorAssignment
	for i := range assignments {
		if !assignments[i].Current() {
			continue
		}
		if current != nil {
			return nil, ErrMultipleCurrentAssignments
		}
		current = &assignments[i]
	}
	if current == nil {
		return nil, ErrNoCurrentAssignment
	}
	return current, nil
}
