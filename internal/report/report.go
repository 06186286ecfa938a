package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/agungatd/daily-data-fetcher/internal/model"
)

// WriteError wraps any failure to persist the report. A run that returns it
// must not be trusted to have left a complete file behind.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string { return fmt.Sprintf("write report %s: %v", e.Path, e.Err) }

func (e *WriteError) Unwrap() error { return e.Err }

// Build assembles the report document. rawCount is the size of the source
// collection before filtering; the metrics block is only set when
// includeMetrics is true.
func Build(criterion, collection string, records []model.Record, rawCount int, includeMetrics bool) model.Report {
	doc := model.Report{
		CategoryFilter: criterion,
		Count:          len(records),
		Collection:     collection,
		Records:        records,
	}
	if includeMetrics {
		doc.Metrics = &model.ReportMetrics{
			RawEntryCount:      rawCount,
			FilteredEntryCount: len(records),
		}
	}
	return doc
}

// Encode renders doc as 4-space indented JSON with a trailing newline.
func Encode(doc model.Report) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes doc and writes it to path, creating the parent directory
// first. The file is written in place.
func Write(path string, doc model.Report) ([]byte, error) {
	b, err := Encode(doc)
	if err != nil {
		return nil, &WriteError{Path: path, Err: fmt.Errorf("encode: %w", err)}
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &WriteError{Path: path, Err: fmt.Errorf("create directory: %w", err)}
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return nil, &WriteError{Path: path, Err: err}
	}
	log.Printf("report: saved %d records to %s", doc.Count, path)
	return b, nil
}
