package classify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/beam-cloud/mailtriage/pkg/analysis"
	"github.com/beam-cloud/mailtriage/pkg/llm"
	"github.com/beam-cloud/mailtriage/pkg/mail"
	"github.com/beam-cloud/mailtriage/pkg/metrics"
	"github.com/beam-cloud/mailtriage/pkg/types"
)

// MessageSource lists and fetches messages for one authorized mailbox
type MessageSource interface {
	ListMessageIDs(ctx context.Context, query string) ([]string, error)
	GetMessage(ctx context.Context, id string) (*mail.Message, error)
}

// Completer is the LLM used for classification
type Completer interface {
	Validate(ctx context.Context) error
	Complete(ctx context.Context, prompt string) (string, error)
}

// SourceFactory builds a MessageSource for an authorized token
type SourceFactory func(ctx context.Context, ts oauth2.TokenSource) (MessageSource, error)

// GmailSource returns a SourceFactory backed by the Gmail API
func GmailSource(cfg types.MailConfig) SourceFactory {
	return func(ctx context.Context, ts oauth2.TokenSource) (MessageSource, error) {
		client, err := mail.NewClient(ctx, cfg, ts)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// Result is the output of one classification job
type Result struct {
	JobID     string
	Query     string
	Rows      []types.MessageRow
	Total     int
	Analysed  int
	Defaulted int
	Duration  time.Duration
}

// Runner executes classification jobs
type Runner struct {
	completer    Completer
	newSource    SourceFactory
	maxBodyChars int
}

func NewRunner(completer Completer, newSource SourceFactory, llmConfig types.LLMConfig) *Runner {
	return &Runner{
		completer:    completer,
		newSource:    newSource,
		maxBodyChars: llmConfig.MaxBodyChars,
	}
}

// Run classifies every message received between start and end (YYYY-MM-DD,
// end optional). Invalid dates and LLM credentials are rejected before any
// mailbox call. A failed message fetch aborts the job; a failed completion
// or an unparseable reply yields empty analysis for that message only.
func (r *Runner) Run(ctx context.Context, ts oauth2.TokenSource, start, end string) (*Result, error) {
	began := time.Now()
	result, err := r.run(ctx, ts, start, end)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecordJobDuration(status, time.Since(began))

	if result != nil {
		result.Duration = time.Since(began)
	}
	return result, err
}

func (r *Runner) run(ctx context.Context, ts oauth2.TokenSource, start, end string) (*Result, error) {
	query, err := mail.BuildQuery(start, end)
	if err != nil {
		return nil, err
	}

	if err := r.completer.Validate(ctx); err != nil {
		return nil, err
	}

	source, err := r.newSource(ctx, ts)
	if err != nil {
		return nil, fmt.Errorf("create message source: %w", err)
	}

	result := &Result{
		JobID: uuid.New().String(),
		Query: query,
	}
	logger := log.With().Str("job_id", result.JobID).Logger()

	ids, err := source.ListMessageIDs(ctx, query)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("query", query).Int("messages", len(ids)).Msg("classification started")

	result.Rows = make([]types.MessageRow, 0, len(ids))
	for _, id := range ids {
		msg, err := source.GetMessage(ctx, id)
		if err != nil {
			return nil, err
		}

		record, ok := r.analyse(ctx, msg)
		if ok {
			result.Analysed++
			metrics.IncrementMessageProcessed(metrics.OutcomeAnalysed)
		} else {
			result.Defaulted++
			metrics.IncrementMessageProcessed(metrics.OutcomeDefaulted)
		}

		result.Rows = append(result.Rows, types.MessageRow{
			Subject:        msg.Subject,
			From:           msg.From,
			ReceivedAt:     msg.ReceivedAt,
			AnalysisRecord: record,
		})
	}
	result.Total = len(result.Rows)

	logger.Info().
		Int("total", result.Total).
		Int("analysed", result.Analysed).
		Int("defaulted", result.Defaulted).
		Msg("classification finished")

	return result, nil
}

// analyse returns the message's analysis and whether anything was recovered
func (r *Runner) analyse(ctx context.Context, msg *mail.Message) (types.AnalysisRecord, bool) {
	body := msg.Body
	if body == "" {
		body = msg.Snippet
	}
	prompt := llm.BuildPrompt(msg.Subject, msg.From, body, r.maxBodyChars)

	output, err := r.completer.Complete(ctx, prompt)
	if err != nil {
		metrics.IncrementLLMFailure()
		log.Warn().Err(err).Str("message_id", msg.ID).Msg("llm completion failed, using empty analysis")
		return types.EmptyAnalysis(), false
	}

	mapping, strategy := analysis.ParseAnalysisWithSource(output)
	metrics.IncrementExtractorStrategy(strategy)

	log.Debug().
		Str("message_id", msg.ID).
		Str("prompt", prompt).
		Str("output", output).
		Str("strategy", strategy).
		Msg("llm exchange")

	if mapping == nil {
		log.Warn().Str("message_id", msg.ID).Msg("could not parse llm output, using empty analysis")
		return types.EmptyAnalysis(), false
	}

	return analysis.ToRecord(mapping), true
}
