package model

import "fmt"

// ValidationError reports bad input detected locally. It never reaches the
// network and never mutates the credential store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
