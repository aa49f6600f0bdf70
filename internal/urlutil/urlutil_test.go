package urlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDomain(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"scheme, port and path", "HTTPS://Example.COM:8443/path", "example.com"},
		{"plain host", "example.com", "example.com"},
		{"http scheme", "http://sub.example.com/a/b", "sub.example.com"},
		{"surrounding whitespace", "  shodan.io \n", "shodan.io"},
		{"port only", "example.com:8080", "example.com"},
		{"uppercase host", "FACEBOOK.COM", "facebook.com"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeDomain(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("empty after normalization", func(t *testing.T) {
		_, err := NormalizeDomain("https:///path")
		assert.ErrorIs(t, err, ErrEmptyInput)
	})
}

func TestNormalizeURL(t *testing.T) {
	t.Run("bare host gets https prefix", func(t *testing.T) {
		got, err := NormalizeURL("example.com/login")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/login", got)
	})

	t.Run("existing scheme preserved", func(t *testing.T) {
		got, err := NormalizeURL("http://example.com")
		require.NoError(t, err)
		assert.Equal(t, "http://example.com", got)
	})

	t.Run("dangerous schemes rejected case-insensitively", func(t *testing.T) {
		for _, input := range []string{
			"javascript:alert(1)",
			"JaVaScRiPt:alert(1)",
			"data:text/html,<script>",
			"file:///etc/passwd",
			"vbscript:msgbox",
			"BLOB:https://example.com/uuid",
		} {
			_, err := NormalizeURL(input)
			assert.ErrorIs(t, err, ErrUnsafeScheme, "input %q", input)
		}
	})

	t.Run("empty input rejected", func(t *testing.T) {
		_, err := NormalizeURL("   ")
		assert.ErrorIs(t, err, ErrEmptyInput)
	})
}
