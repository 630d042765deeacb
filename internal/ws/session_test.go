package ws

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionAssignsUniqueUUID(t *testing.T) {
	a, _ := newTestSession(1)
	b, _ := newTestSession(1)

	require.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)

	_, err := uuid.Parse(a.ID)
	assert.NoError(t, err)
}
