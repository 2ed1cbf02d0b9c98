package config

import "fmt"

// ValidationError reports an invalid or missing config value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config field %s: %s", e.Field, e.Reason)
}
