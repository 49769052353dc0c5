package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mcpgateway/gateway/internal/router/examples"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newRegistry(t *testing.T) (*Registry, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	r := New(ctx)
	t.Cleanup(func() {
		cancel()
		<-r.done
	})
	return r, cancel
}

func TestRegister_RejectsReservedChar(t *testing.T) {
	r, _ := newRegistry(t)
	err := r.Register("bad_id", examples.NewCounter())
	assert.ErrorIs(t, err, ErrReservedChar)
}

func TestRegister_RejectsDuplicate(t *testing.T) {
	r, _ := newRegistry(t)
	require.NoError(t, r.Register("mock", examples.NewCounter()))
	err := r.Register("mock", examples.NewCounter())
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestLookup_SplitsAtFirstUnderscore(t *testing.T) {
	r, _ := newRegistry(t)
	h := examples.NewCounter()
	require.NoError(t, r.Register("mock", h))

	handle, local, found := r.Lookup("mock_tool_one")
	assert.True(t, found)
	assert.Equal(t, h, handle)
	assert.Equal(t, "tool_one", local)
}

func TestLookup_NoUnderscoreFallback(t *testing.T) {
	r, _ := newRegistry(t)
	h := examples.NewCounter()
	require.NoError(t, r.Register("solo", h))

	handle, local, found := r.Lookup("solo")
	assert.True(t, found)
	assert.Equal(t, h, handle)
	assert.Equal(t, "solo", local)
}

func TestLookup_Missing(t *testing.T) {
	r, _ := newRegistry(t)
	_, _, found := r.Lookup("absent_x")
	assert.False(t, found)
}

func TestUnregister_Idempotent(t *testing.T) {
	r, _ := newRegistry(t)
	require.NoError(t, r.Register("mock", examples.NewCounter()))
	r.Unregister("mock")
	r.Unregister("mock") // no panic, no error path to observe

	_, _, found := r.Lookup("mock_x")
	assert.False(t, found)
}

func TestIDs_Snapshot(t *testing.T) {
	r, _ := newRegistry(t)
	require.NoError(t, r.Register("a", examples.NewCounter()))
	require.NoError(t, r.Register("b", examples.NewHello()))

	ids := r.IDs()
	assert.ElementsMatch(t, []string{"a", "b"}, ids)
}
