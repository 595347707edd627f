package analysis

import (
	"github.com/beam-cloud/mailtriage/pkg/types"
)

// ToRecord converts an extraction result into an AnalysisRecord. Missing or
// mistyped fields become empty values; a nil Mapping yields EmptyAnalysis.
func ToRecord(m Mapping) types.AnalysisRecord {
	rec := types.EmptyAnalysis()
	if m == nil {
		return rec
	}

	rec.Category = stringField(m, types.AnalysisKeyCategory)
	rec.Summary = stringField(m, types.AnalysisKeySummary)

	switch v := m[types.AnalysisKeyTags].(type) {
	case []string:
		rec.Tags = limitTags(v)
	case []any:
		tags := make([]string, 0, len(v))
		for _, t := range v {
			if s, ok := t.(string); ok && s != "" {
				tags = append(tags, s)
			}
		}
		rec.Tags = limitTags(tags)
	case string:
		rec.Tags = SplitTags(v)
	}

	return rec
}

func stringField(m Mapping, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func limitTags(tags []string) []string {
	if len(tags) > types.MaxAnalysisTags {
		return tags[:types.MaxAnalysisTags]
	}
	return tags
}
