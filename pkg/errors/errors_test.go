package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseErrorWrapsUnderlying(t *testing.T) {
	t.Parallel()

	underlying := fmt.Errorf("unexpected token")
	err := NewParseError("prompts.yaml", 12, underlying)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "prompts.yaml", parseErr.Path)
	require.Equal(t, 12, parseErr.Line)
	require.True(t, stdErrors.Is(err, underlying))
	require.Contains(t, err.Error(), "prompts.yaml")
}

func TestValidationErrorAggregatesFields(t *testing.T) {
	t.Parallel()

	err := NewValidationError("note_types[Basic].fields.back", "references unknown field", nil)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "note_types[Basic].fields.back", validationErr.Field)
	require.Contains(t, validationErr.Message, "references unknown field")
}

func TestCycleErrorNamesFields(t *testing.T) {
	t.Parallel()

	err := NewCycleError([]string{"back", "front"})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Contains(t, validationErr.Message, "back, front")
	require.Contains(t, err.Error(), "dependency cycle")
}

func TestResolutionErrorIncludesFieldContext(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("connection reset")
	err := NewResolutionError("back", underlying)

	var resolutionErr *ResolutionError
	require.ErrorAs(t, err, &resolutionErr)
	require.Equal(t, "back", resolutionErr.Field)
	require.True(t, stdErrors.Is(err, underlying))
}

func TestCapacityErrorNamesKind(t *testing.T) {
	t.Parallel()

	err := NewCapacityError("tts")

	var capacityErr *CapacityError
	require.ErrorAs(t, err, &capacityErr)
	require.Equal(t, "tts", capacityErr.Kind)
	require.Contains(t, err.Error(), "capacity exhausted for tts")
}

func TestProviderErrorExposesStatus(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("too many requests")
	err := NewProviderError("openai", 429, "rate limited", underlying)

	var providerErr *ProviderError
	require.ErrorAs(t, err, &providerErr)
	require.Equal(t, 429, providerErr.HTTPStatusCode())
	require.True(t, stdErrors.Is(err, underlying))
	require.Contains(t, err.Error(), "http 429")
}
