package importer

import (
	"context"
	"fmt"
	"strings"

	"outreach_backend/internal/notion"
)

// Datastore is the slice of the datastore API the import pipeline needs.
type Datastore interface {
	QueryDatabase(ctx context.Context, databaseID string, req *notion.QueryRequest) (*notion.QueryResponse, error)
	CreatePage(ctx context.Context, databaseID string, props notion.Properties) (*notion.Page, error)
}

// DedupIndex is a case-insensitive set of lead email addresses already
// present in the destination.
type DedupIndex struct {
	emails map[string]struct{}
}

// NewDedupIndex returns an empty index.
func NewDedupIndex() *DedupIndex {
	return &DedupIndex{emails: make(map[string]struct{})}
}

// BuildDedupIndex pages through the whole destination database and collects
// every existing email. The index is built fresh per import run; it is never
// cached across runs.
func BuildDedupIndex(ctx context.Context, ds Datastore, databaseID string) (*DedupIndex, error) {
	idx := NewDedupIndex()

	cursor := ""
	for {
		resp, err := ds.QueryDatabase(ctx, databaseID, &notion.QueryRequest{
			StartCursor: cursor,
			PageSize:    100,
		})
		if err != nil {
			return nil, fmt.Errorf("query existing leads: %w", err)
		}

		for _, page := range resp.Results {
			if email := page.Properties.EmailValue("Email"); email != "" {
				idx.Add(email)
			}
		}

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}

	return idx, nil
}

// Contains reports whether the email is already known.
func (d *DedupIndex) Contains(email string) bool {
	_, ok := d.emails[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// Add records an email so later rows in the same run dedup against it.
func (d *DedupIndex) Add(email string) {
	d.emails[strings.ToLower(strings.TrimSpace(email))] = struct{}{}
}

// Len returns the number of indexed emails.
func (d *DedupIndex) Len() int {
	return len(d.emails)
}
