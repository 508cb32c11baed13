package httpmetrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	testCases := []struct {
		name     string
		path     string
		expected string
	}{
		{"empty", "", "/"},
		{"root", "/", "/"},
		{"collection", "/bookmarks/", "/bookmarks/"},
		{"numeric id", "/bookmarks/42", "/bookmarks/{param}"},
		{"uuid", "/users/3f2504e0-4f89-11d3-9a0c-0305e82c3301", "/users/{param}"},
		{"short code", "/find/aZ9", "/find/{code}"},
		{"stats", "/bookmarks/stats", "/bookmarks/stats"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizePath(tc.path))
		})
	}
}
