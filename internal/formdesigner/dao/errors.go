package dao

import (
	"errors"
	"fmt"
)

var ErrImmutableSubmission = errors.New("form field submissions are immutable")

// DefinitionError - описание формы некорректно или противоречиво. Такая форма не сохраняется.
type DefinitionError struct {
	Field  string
	Reason string
}

func (e DefinitionError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

func definitionErrorf(field, format string, args ...any) DefinitionError {
	return DefinitionError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
