package grid

import "fmt"

// CompositeLengthError reports sub-parameter sequences of unequal
// length inside one composite grid entry.
type CompositeLengthError struct {
	Composite string
}

func (e *CompositeLengthError) Error() string {
	return fmt.Sprintf("all parameter ranges that belong to composite %s must have equal lengths", e.Composite)
}

// EmptyAxisError reports a grid entry declared without any values.
type EmptyAxisError struct {
	Axis string
}

func (e *EmptyAxisError) Error() string {
	return fmt.Sprintf("parameter range of %s must not be empty", e.Axis)
}

// LabelsRequiredError reports a composite parameter without the label
// table needed to resolve its lockstep index to a display token.
type LabelsRequiredError struct {
	Composite string
}

func (e *LabelsRequiredError) Error() string {
	return fmt.Sprintf("param_names must provide an index label list for composite parameter %s", e.Composite)
}
