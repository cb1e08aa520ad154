package faults

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFaultExtraction(t *testing.T) {
	err := InvalidInput("phone", "phone must be exactly 10 digits")
	assert.True(t, IsKind(err, KindInvalidInput))
	assert.False(t, IsKind(err, KindNotFound))

	wrapped := fmt.Errorf("saving client: %w", err)
	f := As(wrapped)
	require.NotNil(t, f)
	assert.Equal(t, "phone", f.Field)

	assert.Nil(t, As(fmt.Errorf("plain failure")))
	assert.False(t, IsKind(nil, KindNotFound))
}

func TestFaultMessages(t *testing.T) {
	assert.EqualError(t, NotFound("animal"), "not_found: animal not found")
	assert.EqualError(t, DuplicateKey("tag", "P-001"), `duplicate_key: tag "P-001" is already registered (field tag)`)
	assert.Contains(t, ReadOnlyRecord().Error(), "read-only")
}
