package reqid

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextRoundTrip(t *testing.T) {
	ctx, id := NewContext(context.Background())
	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, id, got)

	_, err := uuid.Parse(id)
	assert.NoError(t, err)

	_, ok = FromContext(context.Background())
	assert.False(t, ok, "unexpected id in empty context")
}

func TestUniqueIDs(t *testing.T) {
	_, a := NewContext(context.Background())
	_, b := NewContext(context.Background())
	assert.NotEqual(t, a, b)
}

func TestWithID(t *testing.T) {
	const incoming = "6f1c1d4e-8d3b-4a57-9f1e-2c9b8a7d6e5f"
	ctx, id := WithID(context.Background(), incoming)
	assert.Equal(t, incoming, id)
	got, _ := FromContext(ctx)
	assert.Equal(t, incoming, got)

	_, id = WithID(context.Background(), "<script>")
	assert.NotEqual(t, "<script>", id)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}
