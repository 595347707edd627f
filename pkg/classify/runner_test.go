package classify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/beam-cloud/mailtriage/pkg/mail"
	"github.com/beam-cloud/mailtriage/pkg/types"
)

type fakeSource struct {
	ids      []string
	messages map[string]*mail.Message
	listErr  error
	queries  []string
	fetched  []string
}

func (f *fakeSource) ListMessageIDs(ctx context.Context, query string) ([]string, error) {
	f.queries = append(f.queries, query)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.ids, nil
}

func (f *fakeSource) GetMessage(ctx context.Context, id string) (*mail.Message, error) {
	f.fetched = append(f.fetched, id)
	msg, ok := f.messages[id]
	if !ok {
		return nil, fmt.Errorf("get message %s: not found", id)
	}
	return msg, nil
}

type fakeCompleter struct {
	validateErr error
	replies     map[string]string // keyed by subject substring
	failOn      string
	prompts     []string
	validated   int
}

func (f *fakeCompleter) Validate(ctx context.Context) error {
	f.validated++
	return f.validateErr
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.failOn != "" && strings.Contains(prompt, f.failOn) {
		return "", errors.New("upstream unavailable")
	}
	for subject, reply := range f.replies {
		if strings.Contains(prompt, "件名: "+subject) {
			return reply, nil
		}
	}
	return "", nil
}

func sourceFactory(src *fakeSource, calls *int) SourceFactory {
	return func(ctx context.Context, ts oauth2.TokenSource) (MessageSource, error) {
		if calls != nil {
			*calls++
		}
		return src, nil
	}
}

func testMessages() *fakeSource {
	at := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	return &fakeSource{
		ids: []string{"m1", "m2", "m3"},
		messages: map[string]*mail.Message{
			"m1": {ID: "m1", Subject: "請求書", From: "billing@example.com", Body: "支払い期限のお知らせ", ReceivedAt: at},
			"m2": {ID: "m2", Subject: "セール", From: "shop@example.com", Snippet: "今だけ半額", ReceivedAt: at.Add(time.Hour)},
			"m3": {ID: "m3", Subject: "障害", From: "ops@example.com", Body: "復旧しました", ReceivedAt: at.Add(2 * time.Hour)},
		},
	}
}

func TestRunner_Run(t *testing.T) {
	src := testMessages()
	llm := &fakeCompleter{
		replies: map[string]string{
			"請求書": "```json\n{\"カテゴリ名\":\"請求書\",\"タグ\":[\"支払い\",\"確認\"],\"サマリー\":\"支払い期限の通知\"}\n```",
			"セール": "カテゴリ名: 広告\nタグ: セール、通知、限定\nサマリー: 半額セール",
		},
		failOn: "件名: 障害",
	}

	runner := NewRunner(llm, sourceFactory(src, nil), types.LLMConfig{})
	result, err := runner.Run(context.Background(), nil, "2024-01-01", "2024-01-31")
	require.NoError(t, err)

	assert.Equal(t, []string{"after:2024/01/01 before:2024/01/31"}, src.queries)
	assert.Equal(t, 1, llm.validated)
	assert.NotEmpty(t, result.JobID)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Analysed)
	assert.Equal(t, 1, result.Defaulted)

	require.Len(t, result.Rows, 3)
	assert.Equal(t, "請求書", result.Rows[0].Subject)
	assert.Equal(t, "請求書", result.Rows[0].Category)
	assert.Equal(t, []string{"支払い", "確認"}, result.Rows[0].Tags)
	assert.Equal(t, "支払い期限の通知", result.Rows[0].Summary)

	assert.Equal(t, "広告", result.Rows[1].Category)
	assert.Equal(t, []string{"セール", "通知"}, result.Rows[1].Tags)

	// failed completion keeps the row with empty analysis
	assert.Equal(t, "障害", result.Rows[2].Subject)
	assert.Equal(t, types.EmptyAnalysis(), result.Rows[2].AnalysisRecord)
}

func TestRunner_Run_SnippetFallback(t *testing.T) {
	src := testMessages()
	llm := &fakeCompleter{}

	runner := NewRunner(llm, sourceFactory(src, nil), types.LLMConfig{})
	_, err := runner.Run(context.Background(), nil, "2024-01-01", "")
	require.NoError(t, err)

	require.Len(t, llm.prompts, 3)
	assert.Contains(t, llm.prompts[1], "今だけ半額")
}

func TestRunner_Run_UnparseableOutput(t *testing.T) {
	src := testMessages()
	llm := &fakeCompleter{replies: map[string]string{"請求書": "I cannot help with that."}}

	runner := NewRunner(llm, sourceFactory(src, nil), types.LLMConfig{})
	result, err := runner.Run(context.Background(), nil, "2024-01-01", "")
	require.NoError(t, err)

	assert.Equal(t, 0, result.Analysed)
	assert.Equal(t, 3, result.Defaulted)
	for _, row := range result.Rows {
		assert.Equal(t, "", row.Category)
		assert.Equal(t, []string{}, row.Tags)
	}
}

func TestRunner_Run_InvalidCredentials(t *testing.T) {
	src := testMessages()
	llm := &fakeCompleter{validateErr: fmt.Errorf("%w: 401", types.ErrInvalidLLMCredentials)}
	calls := 0

	runner := NewRunner(llm, sourceFactory(src, &calls), types.LLMConfig{})
	result, err := runner.Run(context.Background(), nil, "2024-01-01", "")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, types.ErrInvalidLLMCredentials)
	assert.Equal(t, 0, calls)
	assert.Empty(t, src.queries)
}

func TestRunner_Run_InvalidDates(t *testing.T) {
	src := testMessages()
	llm := &fakeCompleter{}

	runner := NewRunner(llm, sourceFactory(src, nil), types.LLMConfig{})
	_, err := runner.Run(context.Background(), nil, "2024-02-01", "2024-01-01")

	assert.ErrorIs(t, err, types.ErrInvalidDateRange)
	assert.Equal(t, 0, llm.validated)
}

func TestRunner_Run_FetchFailureAborts(t *testing.T) {
	src := testMessages()
	src.ids = []string{"m1", "missing", "m3"}
	llm := &fakeCompleter{}

	runner := NewRunner(llm, sourceFactory(src, nil), types.LLMConfig{})
	result, err := runner.Run(context.Background(), nil, "2024-01-01", "")

	assert.Nil(t, result)
	assert.Error(t, err)
	assert.Equal(t, []string{"m1", "missing"}, src.fetched)
}

func TestRunner_Run_ListFailure(t *testing.T) {
	src := testMessages()
	src.listErr = errors.New("list messages: 500")

	runner := NewRunner(&fakeCompleter{}, sourceFactory(src, nil), types.LLMConfig{})
	_, err := runner.Run(context.Background(), nil, "2024-01-01", "")
	assert.EqualError(t, err, "list messages: 500")
}

func TestRunner_Run_NoMessages(t *testing.T) {
	src := &fakeSource{}
	runner := NewRunner(&fakeCompleter{}, sourceFactory(src, nil), types.LLMConfig{})

	result, err := runner.Run(context.Background(), nil, "2024-01-01", "")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
	assert.NotNil(t, result.Rows)
	assert.Empty(t, result.Rows)
}
