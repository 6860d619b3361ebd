package apierrors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithFormattedMessage(t *testing.T) {
	e := ErrDefinitionInvalid.WithFormattedMessage("field \"colour\": This field class requires a model.")
	assert.Equal(t, "invalid form definition: field \"colour\": This field class requires a model.", e.Error())
	assert.Equal(t, 2003, e.Code)

	e = ErrRequestInvalid.WithFormattedMessage()
	assert.Equal(t, "validation error", e.Err)
	assert.Equal(t, "Введены некорректные данные", e.RuErr)

	// исходная ошибка не меняется
	assert.Equal(t, "invalid form definition: %s", ErrDefinitionInvalid.Err)
}

func TestCodesUnique(t *testing.T) {
	all := []DefinedError{
		ErrGeneric, ErrBadRequest, ErrEntityToLarge, ErrRequestInvalid, ErrInvalidID,
		ErrFormNotFound, ErrFormAlreadyExist, ErrDefinitionInvalid, ErrFormTemplateFailed, ErrChoiceModelFailed,
		ErrSubmissionNotFound, ErrSubmissionSave,
		ErrMailDeliveryFailed,
		ErrAdminUnauthorized,
	}
	seen := map[int]string{}
	for _, e := range all {
		prev, ok := seen[e.Code]
		assert.False(t, ok, "code %d used by %q and %q", e.Code, prev, e.Err)
		seen[e.Code] = e.Err
		assert.NotZero(t, e.StatusCode, e.Err)
	}
}
