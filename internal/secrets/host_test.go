package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_Reveal_RoundTrip(t *testing.T) {
	t.Setenv("GATEWAY_TEST_SECRET", "s3cr3t")

	h := New("")
	handle, err := h.Get("GATEWAY_TEST_SECRET")
	require.NoError(t, err)
	assert.NotZero(t, handle)

	v, err := h.Reveal(handle)
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", v.Reveal())
	assert.Equal(t, "<redacted>", v.String())
}

func TestGet_NotFound(t *testing.T) {
	h := New("")
	_, err := h.Get("GATEWAY_DEFINITELY_UNSET_KEY")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReveal_UnknownHandle(t *testing.T) {
	h := New("")
	_, err := h.Reveal(Handle(999))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGet_HandlesAreMonotonicAndDistinct(t *testing.T) {
	t.Setenv("GATEWAY_TEST_A", "a")
	t.Setenv("GATEWAY_TEST_B", "b")

	h := New("")
	ha, err := h.Get("GATEWAY_TEST_A")
	require.NoError(t, err)
	hb, err := h.Get("GATEWAY_TEST_B")
	require.NoError(t, err)

	assert.NotEqual(t, ha, hb)
}
