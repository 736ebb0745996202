// Package importer implements the bulk lead import pipeline: a streaming
// spreadsheet source, row mapping, duplicate suppression, durable progress
// tracking, and the orchestrator that drives them.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

// ErrInvalidLocator means the spreadsheet locator could not be resolved to a
// fetchable resource.
var ErrInvalidLocator = errors.New("invalid spreadsheet locator")

// ErrSourceUnavailable means the spreadsheet fetch did not return a success
// status.
var ErrSourceUnavailable = errors.New("spreadsheet source unavailable")

var sheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// SheetSource reads lead rows from a published Google Sheet through its CSV
// export endpoint.
type SheetSource struct {
	client *http.Client
	csvURL string
}

// ResolveSheet extracts the spreadsheet ID from a Google Sheets URL and
// returns a source for its CSV export. Fails with ErrInvalidLocator when no
// spreadsheet ID can be extracted.
func ResolveSheet(sheetURL string) (*SheetSource, error) {
	match := sheetIDPattern.FindStringSubmatch(sheetURL)
	if match == nil {
		return nil, ErrInvalidLocator
	}

	return &SheetSource{
		client: &http.Client{Timeout: 60 * time.Second},
		csvURL: fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:csv", match[1]),
	}, nil
}

func (s *SheetSource) open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.csvURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode)
	}

	return resp.Body, nil
}

// Rows starts a streaming decode of the sheet and returns a forward-only
// iterator over its data rows. The full sheet is never materialized; rows
// are decoded straight off the response body.
func (s *SheetSource) Rows(ctx context.Context) (*Rows, error) {
	body, err := s.open(ctx)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil && !errors.Is(err, io.EOF) {
		_ = body.Close()
		return nil, fmt.Errorf("read header: %w", err)
	}

	return &Rows{body: body, reader: reader, header: header}, nil
}

// Count returns the exact number of data rows by running one full streaming
// parse pass. Unlike counting lines, this stays correct when quoted fields
// contain embedded newlines.
func (s *SheetSource) Count(ctx context.Context) (int, error) {
	body, err := s.open(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = body.Close()
	}()

	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	count := 0
	first := true
	for {
		if _, err := reader.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, fmt.Errorf("count rows: %w", err)
		}
		if first {
			first = false
			continue
		}
		count++
	}
	return count, nil
}

// Rows is a lazy iterator over the sheet's data rows.
type Rows struct {
	body   io.ReadCloser
	reader *csv.Reader
	header []string
}

// Next returns the next row keyed by column name, or io.EOF after the last
// row. Short records are padded with empty strings.
func (r *Rows) Next() (map[string]string, error) {
	record, err := r.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, err
	}

	row := make(map[string]string, len(r.header))
	for i, name := range r.header {
		if i < len(record) {
			row[name] = record[i]
		} else {
			row[name] = ""
		}
	}
	return row, nil
}

// Close releases the underlying response body.
func (r *Rows) Close() error {
	return r.body.Close()
}
