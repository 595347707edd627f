package types

import "time"

// Keys the classification prompt asks the model to emit
const (
	AnalysisKeyCategory = "カテゴリ名"
	AnalysisKeyTags     = "タグ"
	AnalysisKeySummary  = "サマリー"
)

const (
	// MaxAnalysisTags is the most tags kept per message
	MaxAnalysisTags = 2

	// SummaryLengthHint is the summary length requested from the model. Not enforced.
	SummaryLengthHint = 15
)

// AnalysisRecord is the structured classification of one message
type AnalysisRecord struct {
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Summary  string   `json:"summary"`
}

// EmptyAnalysis is substituted when the model call or parse fails
func EmptyAnalysis() AnalysisRecord {
	return AnalysisRecord{Tags: []string{}}
}

// MessageRow is one output row: message headers plus its analysis
type MessageRow struct {
	Subject    string    `json:"subject"`
	From       string    `json:"from"`
	ReceivedAt time.Time `json:"received_at"`
	AnalysisRecord
}
