package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/beam-cloud/mailtriage/pkg/classify"
	"github.com/beam-cloud/mailtriage/pkg/export"
	"github.com/beam-cloud/mailtriage/pkg/llm"
	"github.com/beam-cloud/mailtriage/pkg/oauth"
)

const previewRows = 10

var (
	classifyStart string
	classifyEnd   string
	classifyOut   string
	classifyBOM   bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify messages in a date range and write CSV",
	Example: `  mailtriage classify --start 2024-01-01 --end 2024-01-31
  mailtriage classify --start 2024-01-01 --out out/january.csv --bom`,
	RunE: runClassifyCmd,
}

func init() {
	classifyCmd.Flags().StringVar(&classifyStart, "start", "", "Start date (YYYY-MM-DD), required")
	classifyCmd.Flags().StringVar(&classifyEnd, "end", "", "End date (YYYY-MM-DD), optional")
	classifyCmd.Flags().StringVar(&classifyOut, "out", "", "Output CSV path (default from config)")
	classifyCmd.Flags().BoolVar(&classifyBOM, "bom", false, "Prefix the CSV with a UTF-8 BOM")
	classifyCmd.MarkFlagRequired("start")
}

type jobRunner interface {
	Run(ctx context.Context, ts oauth2.TokenSource, start, end string) (*classify.Result, error)
}

func runClassifyCmd(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	token, err := loadStoredToken(tokenPath)
	if err != nil {
		return err
	}

	client, err := oauth.NewGoogleClient(config.OAuth)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	ts := client.TokenSource(ctx, token)
	runner := classify.NewRunner(llm.NewClient(config.LLM), classify.GmailSource(config.Mail), config.LLM)

	path := classifyOut
	if path == "" {
		path = filepath.Join(config.Export.Path, config.Export.FileName)
	}

	if err := runClassify(ctx, runner, ts, path, export.Options{BOM: classifyBOM || config.Export.BOM}); err != nil {
		return err
	}

	// Keep a refreshed token for the next run
	if refreshed, err := ts.Token(); err == nil && refreshed.AccessToken != token.AccessToken {
		if err := oauth.SaveToken(tokenPath, refreshed); err != nil {
			PrintWarning(fmt.Sprintf("could not save refreshed token: %v", err))
		}
	}
	return nil
}

func runClassify(ctx context.Context, runner jobRunner, ts oauth2.TokenSource, path string, opts export.Options) error {
	PrintInfof("Classifying messages from %s%s", classifyStart, endLabel(classifyEnd))

	result, err := runner.Run(ctx, ts, classifyStart, classifyEnd)
	if err != nil {
		return err
	}

	if err := export.WriteFile(path, result.Rows, opts); err != nil {
		return err
	}

	printResult(result, path)
	return nil
}

func printResult(result *classify.Result, path string) {
	PrintHeader("Result")
	PrintKeyValue("Query", result.Query)
	PrintKeyValue("Messages", fmt.Sprintf("%d", result.Total))
	PrintKeyValue("Analysed", fmt.Sprintf("%d", result.Analysed))
	PrintKeyValue("Defaulted", fmt.Sprintf("%d", result.Defaulted))
	PrintKeyValue("Duration", result.Duration.Round(time.Millisecond).String())
	fmt.Fprintln(out)

	table := NewTable("受信日時", "カテゴリ名", "件名")
	for i, row := range result.Rows {
		if i == previewRows {
			break
		}
		table.AddRow(export.FormatTime(row.ReceivedAt), row.Category, Truncate(row.Subject, 40))
	}
	table.Print()

	if len(result.Rows) > previewRows {
		PrintInfof("%d more rows in the CSV", len(result.Rows)-previewRows)
	}
	PrintSuccessf("CSV written to %s", path)
}

func endLabel(end string) string {
	if end == "" {
		return ""
	}
	return " to " + end
}

var _ jobRunner = (*classify.Runner)(nil)
