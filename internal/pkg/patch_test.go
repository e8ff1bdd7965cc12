package pkg

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePatchProtectedField(t *testing.T) {
	updates := map[string]any{
		"bio":  "new bio",
		"role": 1,
	}
	current := map[string]any{"bio": "old bio"}

	fields, err := SanitizePatch(updates, current, []string{"id", "role"})
	require.Error(t, err)
	assert.Nil(t, fields)
	assert.True(t, IsStatus(err, http.StatusForbidden))
}

func TestSanitizePatchDropsUnchanged(t *testing.T) {
	updates := map[string]any{
		"bio":   "same",
		"title": "changed",
	}
	current := map[string]any{
		"bio":   "same",
		"title": "original",
	}

	fields, err := SanitizePatch(updates, current, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "changed"}, fields)
}

func TestSanitizePatchUnsetCurrentIncluded(t *testing.T) {
	updates := map[string]any{"avatar": "http://example.com/a.png"}

	fields, err := SanitizePatch(updates, map[string]any{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/a.png", fields["avatar"])
}

func TestHTTPStatusDefault(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("x")))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(Forbidden("x")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(assert.AnError))
}
