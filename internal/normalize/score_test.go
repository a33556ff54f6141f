package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreBreakdown(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  []string
	}{
		{"nil", nil, []string{}},
		{"newline string", "Skills: 9\n\n  Culture: 7  \n", []string{"Skills: 9", "Culture: 7"}},
		{"json string", `[{"name":"Experience","score":8}]`, []string{"Experience: 8"}},
		{"string array", []any{" a ", "", "b"}, []string{"a", "b"}},
		{
			name: "object array with alias keys",
			input: []any{
				map[string]any{"label": "Skills", "value": json.Number("9")},
				map[string]any{"criterion": "Location", "weight": 0.5},
				map[string]any{"category": "Seniority"},
				map[string]any{"percent": 40},
				map[string]any{"unrelated": true},
				42,
			},
			want: []string{"Skills: 9", "Location: 0.5", "Seniority"},
		},
		{"label map is sorted", map[string]any{"b": 2.0, "a": "1"}, []string{"a: 1", "b: 2"}},
		{"single labelled object", map[string]any{"key": "Fit", "score": json.Number("7")}, []string{"Fit: 7"}},
		{"unsupported type", 3.5, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreBreakdown(tt.input))
		})
	}
}
