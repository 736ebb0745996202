package importer

import (
	"context"
	"fmt"
	"testing"

	"outreach_backend/internal/notion"
)

type pagedDatastore struct {
	pages    [][]notion.Page
	requests []string
}

func (p *pagedDatastore) QueryDatabase(_ context.Context, _ string, req *notion.QueryRequest) (*notion.QueryResponse, error) {
	p.requests = append(p.requests, req.StartCursor)

	idx := 0
	if req.StartCursor != "" {
		_, _ = fmt.Sscanf(req.StartCursor, "page-%d", &idx)
	}

	resp := &notion.QueryResponse{Results: p.pages[idx]}
	if idx+1 < len(p.pages) {
		resp.HasMore = true
		resp.NextCursor = fmt.Sprintf("page-%d", idx+1)
	}
	return resp, nil
}

func (p *pagedDatastore) CreatePage(context.Context, string, notion.Properties) (*notion.Page, error) {
	return &notion.Page{}, nil
}

func leadPage(email string) notion.Page {
	return notion.Page{Properties: notion.Properties{"Email": notion.Email(email)}}
}

func TestBuildDedupIndexPagination(t *testing.T) {
	ds := &pagedDatastore{pages: [][]notion.Page{
		{leadPage("a@x.io"), leadPage("b@x.io")},
		{leadPage("c@x.io"), {Properties: notion.Properties{}}},
		{leadPage("d@x.io")},
	}}

	idx, err := BuildDedupIndex(context.Background(), ds, "db")
	if err != nil {
		t.Fatalf("BuildDedupIndex: %v", err)
	}

	if len(ds.requests) != 3 {
		t.Fatalf("requests = %d, want 3 pages", len(ds.requests))
	}
	if idx.Len() != 4 {
		t.Fatalf("Len = %d, want 4 (page without email skipped)", idx.Len())
	}
	if !idx.Contains("d@x.io") {
		t.Fatal("missing email from last page")
	}
}

func TestDedupIndexCaseInsensitive(t *testing.T) {
	idx := NewDedupIndex()
	idx.Add("Jane@Acme.IO")

	if !idx.Contains("jane@acme.io") {
		t.Fatal("lookup should ignore case")
	}
	if !idx.Contains("  JANE@ACME.IO  ") {
		t.Fatal("lookup should ignore surrounding whitespace")
	}
	if idx.Contains("other@acme.io") {
		t.Fatal("unexpected membership")
	}
}
