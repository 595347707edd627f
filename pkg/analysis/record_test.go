package analysis

import (
	"testing"

	"github.com/beam-cloud/mailtriage/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestToRecord(t *testing.T) {
	tests := []struct {
		name     string
		input    Mapping
		expected types.AnalysisRecord
	}{
		{
			name:     "nil mapping",
			input:    nil,
			expected: types.AnalysisRecord{Tags: []string{}},
		},
		{
			name: "decoded json",
			input: Mapping{
				"カテゴリ名": "広告",
				"タグ":    []any{"セール", "通知"},
				"サマリー":  "セール案内",
			},
			expected: types.AnalysisRecord{Category: "広告", Tags: []string{"セール", "通知"}, Summary: "セール案内"},
		},
		{
			name:     "label fallback",
			input:    Mapping{"タグ": []string{"支払い", "確認"}},
			expected: types.AnalysisRecord{Tags: []string{"支払い", "確認"}},
		},
		{
			name:     "too many json tags",
			input:    Mapping{"タグ": []any{"a", "b", "c"}},
			expected: types.AnalysisRecord{Tags: []string{"a", "b"}},
		},
		{
			name:     "tags as a string",
			input:    Mapping{"タグ": "a、b、c"},
			expected: types.AnalysisRecord{Tags: []string{"a", "b"}},
		},
		{
			name:     "mistyped fields",
			input:    Mapping{"カテゴリ名": 3.0, "タグ": []any{1.0, "ok"}, "サマリー": nil},
			expected: types.AnalysisRecord{Tags: []string{"ok"}},
		},
		{
			name:     "unexpected keys",
			input:    Mapping{"label": "spam"},
			expected: types.AnalysisRecord{Tags: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToRecord(tt.input))
		})
	}
}

func TestToRecord_EndToEnd(t *testing.T) {
	rec := ToRecord(ParseAnalysis("```json\n{\"カテゴリ名\":\"請求\",\"タグ\":[\"支払い\"],\"サマリー\":\"今月分の請求\"}\n```"))
	assert.Equal(t, "請求", rec.Category)
	assert.Equal(t, []string{"支払い"}, rec.Tags)
	assert.Equal(t, "今月分の請求", rec.Summary)
}
