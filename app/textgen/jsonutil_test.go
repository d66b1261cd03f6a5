package textgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		found   bool
	}{
		{
			name:    "bare object",
			content: `{"name":"Full Name"}`,
			want:    `{"name":"Full Name"}`,
			found:   true,
		},
		{
			name:    "prose around object",
			content: "Sure! Here is the mapping:\n{\"name\": \"Client\", \"email\": null}\nLet me know.",
			want:    `{"name": "Client", "email": null}`,
			found:   true,
		},
		{
			name:    "fenced block",
			content: "```json\n{\"a\": {\"b\": 1}}\n```",
			want:    `{"a": {"b": 1}}`,
			found:   true,
		},
		{
			name:    "braces inside strings",
			content: `note {"notes": "likes {curly} braces"} trailing }`,
			want:    `{"notes": "likes {curly} braces"}`,
			found:   true,
		},
		{
			name:    "first object wins",
			content: `{"first": 1} and {"second": 2}`,
			want:    `{"first": 1}`,
			found:   true,
		},
		{
			name:    "unbalanced",
			content: `{"name": "x"`,
			found:   false,
		},
		{
			name:    "no object",
			content: "I cannot help with that.",
			found:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tt.content)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
