// Package storage persists size score records to the append-only score log.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/naka-gawa/pr-size-score/internal/domain"
)

// DefaultLogPath is where records are appended, relative to the working directory.
const DefaultLogPath = "metrics/pr_size_scores.jsonl"

// Appender defines the behavior of a sink that records are appended to.
type Appender interface {
	Append(record domain.SizeScoreRecord) error
}

// JSONLAppender appends records as JSON Lines to a file.
// The file is never truncated; concurrent writers are not coordinated.
type JSONLAppender struct {
	path   string
	logger *log.Logger
}

// NewJSONLAppender creates a JSONLAppender writing to path.
func NewJSONLAppender(path string, logger *log.Logger) *JSONLAppender {
	return &JSONLAppender{path: path, logger: logger}
}

// Path returns the file the appender writes to.
func (a *JSONLAppender) Path() string {
	return a.path
}

// Append writes record as a single line, creating the parent directory if needed.
func (a *JSONLAppender) Append(record domain.SizeScoreRecord) error {
	line, err := EncodeLine(record)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(a.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open score log %s: %w", a.path, err)
	}
	// One Write per record so the line is not split across writes.
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to score log %s: %w", a.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close score log %s: %w", a.path, err)
	}
	a.logger.Printf("Appended record for %s#%d to %s\n", record.Repo, record.PRNumber, a.path)
	return nil
}

// EncodeLine serializes record as one newline-terminated JSON object.
// Non-ASCII and HTML characters are written literally.
func EncodeLine(record domain.SizeScoreRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(record); err != nil {
		return nil, fmt.Errorf("failed to encode record for %s#%d: %w", record.Repo, record.PRNumber, err)
	}
	return buf.Bytes(), nil
}
