package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/beam-cloud/mailtriage/pkg/types"
)

const DefaultFileName = "result.csv"

const receivedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// Header is the fixed column order of the exported table
var Header = []string{"件名", "送信者", "受信日時", "カテゴリ名", "タグ", "サマリー"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type Options struct {
	// BOM prefixes the output with a UTF-8 byte order mark for spreadsheet apps
	BOM bool
}

// WriteCSV writes the header followed by one record per row
func WriteCSV(w io.Writer, rows []types.MessageRow, opts Options) error {
	if opts.BOM {
		if _, err := w.Write(utf8BOM); err != nil {
			return err
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}

	for _, row := range rows {
		tags, err := EncodeTags(row.Tags)
		if err != nil {
			return err
		}

		record := []string{
			row.Subject,
			row.From,
			FormatTime(row.ReceivedAt),
			row.Category,
			tags,
			row.Summary,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes the table to path atomically, creating the parent directory
func WriteFile(path string, rows []types.MessageRow, opts Options) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := WriteCSV(tmp, rows, opts); err != nil {
		tmp.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// EncodeTags renders tags as a compact JSON array. Non-ASCII and HTML
// characters are written as-is; nil encodes as [].
func EncodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(tags); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// FormatTime renders a received-at timestamp with milliseconds, the precision
// of Gmail's internalDate. The zero time is empty.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(receivedAtLayout)
}
