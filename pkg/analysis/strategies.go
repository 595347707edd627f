package analysis

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/beam-cloud/mailtriage/pkg/types"
)

// FromSpan decodes the greedy span from the first '{' to the last '}'.
// Nested or multiple objects over-capture; that's accepted.
func FromSpan(text string) Mapping {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return nil
	}
	return decodeObject(text[start : end+1])
}

// FromDocument decodes the whole text as a JSON object. Any text that decodes
// here also has a span FromSpan accepts, so after FromSpan it only wins for
// callers running it alone or ahead of FromSpan.
func FromDocument(text string) Mapping {
	return decodeObject(text)
}

func decodeObject(s string) Mapping {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil || m == nil {
		return nil
	}
	return Mapping(m)
}

var (
	categoryLine = regexp.MustCompile(`(?m)^[ \t\x{3000}]*(?:カテゴリ名|カテゴリ)[ \t\x{3000}]*[:：][ \t\x{3000}]*(.*)`)
	tagsLine     = regexp.MustCompile(`(?m)^[ \t\x{3000}]*タグ[ \t\x{3000}]*[:：][ \t\x{3000}]*(.*)`)
	summaryLine  = regexp.MustCompile(`(?m)^[ \t\x{3000}]*サマリー[ \t\x{3000}]*[:：][ \t\x{3000}]*(.*)`)
	tagSeparator = regexp.MustCompile(`[,，、\s\x{3000}]+`)
)

// FromLabels recovers fields from "label: value" lines. A label must open its
// line (leading blanks allowed). Only the first occurrence of each label counts. Partial results are returned as-is.
func FromLabels(text string) Mapping {
	m := Mapping{}

	if v, ok := matchLabel(categoryLine, text); ok {
		m[types.AnalysisKeyCategory] = v
	}
	if v, ok := matchLabel(tagsLine, text); ok {
		m[types.AnalysisKeyTags] = SplitTags(v)
	}
	if v, ok := matchLabel(summaryLine, text); ok {
		m[types.AnalysisKeySummary] = v
	}

	if len(m) == 0 {
		return nil
	}
	return m
}

// matchLabel returns the trimmed value after the first label match. The
// pattern's (.*) stops at the end of the line.
func matchLabel(re *regexp.Regexp, text string) (string, bool) {
	match := re.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	return strings.TrimSpace(match[1]), true
}

// SplitTags splits a tag list on ASCII/full-width/ideographic commas and
// whitespace, drops empty tokens and keeps at most MaxAnalysisTags.
func SplitTags(value string) []string {
	tags := []string{}
	for _, tok := range tagSeparator.Split(value, -1) {
		if tok == "" {
			continue
		}
		tags = append(tags, tok)
		if len(tags) == types.MaxAnalysisTags {
			break
		}
	}
	return tags
}
