// Package analysis recovers a classification record from free-form model output.
//
// Models are asked for a JSON object but often wrap it in a code fence, surround
// it with prose, or answer with "label: value" lines instead. ParseAnalysis runs
// an ordered chain of strategies over the text and returns the first result.
package analysis

import (
	"strings"
)

// Mapping is the raw extraction result. Keys are whatever the winning strategy
// produced; the JSON strategies return the decoded object verbatim.
type Mapping map[string]any

// Strategy turns cleaned model output into a Mapping, or nil if it can't
type Strategy struct {
	Name string
	Fn   func(text string) Mapping
}

// DefaultStrategies is the fallback chain, tried in order
var DefaultStrategies = []Strategy{
	{Name: "span", Fn: FromSpan},
	{Name: "document", Fn: FromDocument},
	{Name: "labels", Fn: FromLabels},
}

// ParseAnalysis extracts a Mapping from model output. Returns nil if nothing
// could be recovered.
func ParseAnalysis(text string) Mapping {
	m, _ := ParseAnalysisWithSource(text)
	return m
}

// ParseAnalysisWithSource is ParseAnalysis but also reports which strategy won.
// The source is empty when the result is nil.
func ParseAnalysisWithSource(text string) (Mapping, string) {
	return Parse(text, DefaultStrategies...)
}

// Parse runs the given strategies over the fence-stripped text and returns the
// first non-nil result along with the strategy name.
func Parse(text string, strategies ...Strategy) (Mapping, string) {
	if strings.TrimSpace(text) == "" {
		return nil, ""
	}

	cleaned := StripFence(text)
	for _, s := range strategies {
		if m := s.Fn(cleaned); m != nil {
			return m, s.Name
		}
	}
	return nil, ""
}

const fence = "```"

// StripFence removes a leading and trailing triple-backtick fence. When the
// opening fence line carries a language tag ("```json"), that line is dropped.
func StripFence(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, fence) {
		text = strings.TrimLeft(text, "`")
		if idx := strings.IndexByte(text, '\n'); idx >= 0 {
			if tag := strings.TrimSpace(text[:idx]); tag == "" || isLanguageTag(tag) {
				text = text[idx+1:]
			}
		} else if isLanguageTag(strings.TrimSpace(strings.TrimRight(text, "`"))) {
			// "```json```" with nothing inside
			return ""
		}
	}

	text = strings.TrimSpace(text)
	if strings.HasSuffix(text, fence) {
		text = strings.TrimRight(text, "`")
	}

	return strings.TrimSpace(text)
}

// isLanguageTag reports whether s looks like a fence info string ("json",
// "JSON", "jsonc") rather than the first line of content.
func isLanguageTag(s string) bool {
	if s == "" || len(s) > 20 {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' || r == '+') {
			return false
		}
	}
	return true
}
