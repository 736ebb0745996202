package notion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientSendsAuthHeaders(t *testing.T) {
	var gotAuth, gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("Notion-Version")
		_ = json.NewEncoder(w).Encode(Database{ID: "db"})
	}))
	t.Cleanup(srv.Close)

	client := New("secret-key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	if _, err := client.RetrieveDatabase(context.Background(), "db"); err != nil {
		t.Fatalf("RetrieveDatabase: %v", err)
	}

	if gotAuth != "Bearer secret-key" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotVersion != apiVersion {
		t.Fatalf("Notion-Version = %q", gotVersion)
	}
}

func TestRetrieveDatabaseTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/databases/db-1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(Database{
			ID:    "db-1",
			Title: []RichTextObject{{Text: &TextContent{Content: "Leads"}}},
		})
	}))
	t.Cleanup(srv.Close)

	client := New("k", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	db, err := client.RetrieveDatabase(context.Background(), "db-1")
	if err != nil {
		t.Fatalf("RetrieveDatabase: %v", err)
	}
	if db.PlainTitle() != "Leads" {
		t.Fatalf("PlainTitle = %q", db.PlainTitle())
	}
}

func TestQueryDatabasePassesCursor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/databases/db/query" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}

		var req QueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.StartCursor != "cur-1" || req.PageSize != 100 {
			t.Errorf("request = %+v", req)
		}

		_ = json.NewEncoder(w).Encode(QueryResponse{
			Results:    []Page{{ID: "p1"}},
			HasMore:    true,
			NextCursor: "cur-2",
		})
	}))
	t.Cleanup(srv.Close)

	client := New("k", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	resp, err := client.QueryDatabase(context.Background(), "db", &QueryRequest{StartCursor: "cur-1", PageSize: 100})
	if err != nil {
		t.Fatalf("QueryDatabase: %v", err)
	}
	if len(resp.Results) != 1 || resp.NextCursor != "cur-2" || !resp.HasMore {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestCreatePageSetsParent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/pages" {
			t.Errorf("path = %q", r.URL.Path)
		}

		var body struct {
			Parent struct {
				DatabaseID string `json:"database_id"`
			} `json:"parent"`
			Properties Properties `json:"properties"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Parent.DatabaseID != "db-1" {
			t.Errorf("parent = %+v", body.Parent)
		}
		if body.Properties.EmailValue("Email") != "jane@acme.io" {
			t.Errorf("properties = %+v", body.Properties)
		}

		_ = json.NewEncoder(w).Encode(Page{ID: "new-page"})
	}))
	t.Cleanup(srv.Close)

	client := New("k", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	page, err := client.CreatePage(context.Background(), "db-1", Properties{"Email": Email("jane@acme.io")})
	if err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	if page.ID != "new-page" {
		t.Fatalf("page = %+v", page)
	}
}

func TestAPIErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"validation_error","message":"Email is expected to be email"}`))
	}))
	t.Cleanup(srv.Close)

	client := New("k", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	_, err := client.CreatePage(context.Background(), "db", Properties{})
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Code != "validation_error" {
		t.Fatalf("apiErr = %+v", apiErr)
	}
}

func TestDateBuilderFormatsRFC3339(t *testing.T) {
	ts := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	prop := Date(ts)
	if prop.Date == nil || prop.Date.Start != "2026-03-10T09:30:00Z" {
		t.Fatalf("prop = %+v", prop)
	}
}
