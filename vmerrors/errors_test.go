package vmerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorParts(t *testing.T) {
	assert.Equal(t, "ProgramParseError", GetErrorName(ErrProgramParse))
	assert.Equal(t, "D1", GetErrorCode(ErrOpcodeParse))
	assert.Equal(t, "IO1_InvalidInputError", GetErrorCodeWithName(ErrInvalidInput))
	assert.Equal(t, "Memory access at a negative address.", GetErrorDesc(ErrNegativeAddress))
	assert.Equal(t, "No Error", GetErrorName(nil))
	assert.Equal(t, "", GetErrorCode(errors.New("plain")))
}

func TestWrappedNames(t *testing.T) {
	wrapped := fmt.Errorf("run amp 3: %w", ErrOutputClosed)
	assert.True(t, errors.Is(wrapped, ErrOutputClosed))
	assert.Equal(t, []string{"ImmediateDestinationError", "NotReady"},
		GetErrorNames([]error{ErrImmediateDestination, ErrNotReady}))
}
