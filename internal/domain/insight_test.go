package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name  string
		tags  []string
		limit int
		want  []string
	}{
		{"nil", nil, MaxSuggestedTags, []string{}},
		{"trims and lowercases", []string{"  Go ", "SQL"}, MaxSuggestedTags, []string{"go", "sql"}},
		{"drops duplicates after folding", []string{"Go", "go", "GO "}, MaxSuggestedTags, []string{"go"}},
		{"drops blanks", []string{"", "   ", "ok"}, MaxSuggestedTags, []string{"ok"}},
		{"caps", []string{"a", "b", "c", "d", "e", "f", "g"}, MaxSuggestedTags, []string{"a", "b", "c", "d", "e"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTags(tt.tags, tt.limit))
		})
	}
}
