package llm

import (
	"fmt"
	"strings"

	"github.com/beam-cloud/mailtriage/pkg/types"
)

const DefaultMaxBodyChars = 4000

const promptTemplate = `以下のメールを分類してください。
次のキーを持つJSONオブジェクトのみを出力してください。
- "%s": メールのカテゴリ名
- "%s": 関連するタグ(最大%d個、文字列の配列)
- "%s": %d文字以内の日本語の要約

件名: %s
送信者: %s
本文:
%s`

// BuildPrompt renders the classification instruction for one message. The body
// is cut to maxBodyChars runes; zero or less uses DefaultMaxBodyChars.
func BuildPrompt(subject, from, body string, maxBodyChars int) string {
	if maxBodyChars <= 0 {
		maxBodyChars = DefaultMaxBodyChars
	}

	return fmt.Sprintf(promptTemplate,
		types.AnalysisKeyCategory,
		types.AnalysisKeyTags, types.MaxAnalysisTags,
		types.AnalysisKeySummary, types.SummaryLengthHint,
		strings.TrimSpace(subject),
		strings.TrimSpace(from),
		Truncate(strings.TrimSpace(body), maxBodyChars),
	)
}

// Truncate cuts s to at most n runes
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
