package examples

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter_Increment(t *testing.T) {
	c := NewCounter()
	ctx := context.Background()

	result, err := c.CallTool(ctx, "increment", nil)
	require.NoError(t, err)
	assert.Equal(t, "1", result.Content[0].Text)

	result, err = c.CallTool(ctx, "increment", nil)
	require.NoError(t, err)
	assert.Equal(t, "2", result.Content[0].Text)
}

func TestCounter_UnknownTool(t *testing.T) {
	c := NewCounter()
	result, err := c.CallTool(context.Background(), "decrement", nil)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHello_Greet(t *testing.T) {
	h := NewHello()
	result, err := h.CallTool(context.Background(), "greet", map[string]interface{}{"name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Hello, Ada!", result.Content[0].Text)
}

func TestHello_GreetDefaultsToWorld(t *testing.T) {
	h := NewHello()
	result, err := h.CallTool(context.Background(), "greet", nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", result.Content[0].Text)
}

func TestHello_GetPrompt(t *testing.T) {
	h := NewHello()
	result, err := h.GetPrompt(context.Background(), "greeting")
	require.NoError(t, err)
	require.Len(t, result.Messages, 1)
}
