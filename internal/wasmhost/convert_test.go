package wasmhost

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpgateway/gateway/internal/router"
)

func strptr(s string) *string { return &s }

func TestAnnotationsFromWire_Timestamps(t *testing.T) {
	t.Run("valid RFC 3339 round-trips to UTC", func(t *testing.T) {
		a := annotationsFromWire(&wireAnnotations{
			LastModified: strptr("2025-06-01T12:30:00+02:00"),
		})
		require.NotNil(t, a.LastModified)
		assert.Equal(t, time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC), *a.LastModified)
	})

	t.Run("parse failure yields absent", func(t *testing.T) {
		a := annotationsFromWire(&wireAnnotations{LastModified: strptr("yesterday-ish")})
		assert.Nil(t, a.LastModified)
	})

	t.Run("nil annotations stay nil", func(t *testing.T) {
		assert.Nil(t, annotationsFromWire(nil))
	})
}

func TestAnnotationsFromWire_Roles(t *testing.T) {
	a := annotationsFromWire(&wireAnnotations{
		Audience: []string{"user", "assistant"},
		Priority: 0.5,
	})
	assert.Equal(t, []router.Role{router.RoleUser, router.RoleAssistant}, a.Audience)
	assert.Equal(t, 0.5, a.Priority)
}

func TestContentFromWire_Variants(t *testing.T) {
	text := contentFromWire(wireContent{Type: "text", Text: "hi"})
	assert.Equal(t, "text", text.Type)
	assert.Equal(t, "hi", text.Text)

	img := contentFromWire(wireContent{Type: "image", Data: "aGk=", MimeType: "image/png"})
	require.NotNil(t, img.Image)
	assert.Equal(t, "aGk=", img.Image.Data)

	res := contentFromWire(wireContent{Type: "resource", Resource: &wireResourceContents{
		URI:  "doc",
		Text: strptr("body"),
	}})
	require.NotNil(t, res.Resource)
	assert.Equal(t, "body", res.Resource.Resource.Text)
}

func TestResourceContentsFromWire_TextAndBlob(t *testing.T) {
	text := resourceContentsFromWire(wireResourceContents{URI: "a", Text: strptr("t")})
	assert.Equal(t, "t", text.Text)
	assert.Empty(t, text.Blob)

	blob := resourceContentsFromWire(wireResourceContents{URI: "b", Blob: strptr("AAAA")})
	assert.Equal(t, "AAAA", blob.Blob)
	assert.Empty(t, blob.Text)
}

func TestKindFromWire_UnknownDegradesToInternal(t *testing.T) {
	assert.Equal(t, router.ErrNotFound, kindFromWire(kindNotFound))
	assert.Equal(t, router.ErrSchema, kindFromWire(kindSchemaError))
	assert.Equal(t, router.ErrInternal, kindFromWire("something-new"))
}
