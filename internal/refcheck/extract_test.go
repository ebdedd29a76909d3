package refcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractURLs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single link",
			text: "Check out [Python docs](https://docs.python.org) for more info.",
			want: []string{"https://docs.python.org"},
		},
		{
			name: "multiple links keep order",
			text: "- [Python](https://python.org)\n- [Rust](https://rust-lang.org)\n- [Go](https://go.dev)",
			want: []string{"https://python.org", "https://rust-lang.org", "https://go.dev"},
		},
		{
			name: "non-http links ignored",
			text: "- [Email](mailto:test@example.com)\n- [Local](/path/to/file)\n- [Valid](https://example.com)",
			want: []string{"https://example.com"},
		},
		{
			name: "bare urls ignored",
			text: "see https://example.com and [x](http://example.org)",
			want: []string{"http://example.org"},
		},
		{
			name: "duplicates preserved",
			text: "[a](https://a.dev) [b](https://a.dev)",
			want: []string{"https://a.dev", "https://a.dev"},
		},
		{
			name: "paths query and fragment",
			text: "[Docs](https://docs.example.com/api/v2?param=value#section)",
			want: []string{"https://docs.example.com/api/v2?param=value#section"},
		},
		{
			name: "no links",
			text: "No links here!",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractURLs(tt.text))
		})
	}
}

func TestIsHeader(t *testing.T) {
	assert.True(t, isHeader("# Title"))
	assert.True(t, isHeader("### Tutorials"))
	assert.True(t, isHeader("##"))
	assert.False(t, isHeader("#hashtag"))
	assert.False(t, isHeader("- [x](https://x.dev)"))
	assert.False(t, isHeader("    # indented code"))
}
