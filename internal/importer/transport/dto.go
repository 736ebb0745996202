// Package transport defines the request and response shapes of the import
// API.
package transport

// ImportRequest starts or resumes a background import job.
type ImportRequest struct {
	SheetURL         string `json:"sheetUrl" validate:"required,min=10"`
	NotionAPIKey     string `json:"notionApiKey" validate:"omitempty,min=10"`
	NotionDatabaseID string `json:"notionDatabaseId" validate:"omitempty,min=10"`
	SkipDuplicates   bool   `json:"skipDuplicates"`
}

// ChunkRequest imports one bounded slice of the sheet synchronously.
type ChunkRequest struct {
	SheetURL         string `json:"sheetUrl" validate:"required,min=10"`
	NotionAPIKey     string `json:"notionApiKey" validate:"omitempty,min=10"`
	NotionDatabaseID string `json:"notionDatabaseId" validate:"omitempty,min=10"`
	SkipDuplicates   bool   `json:"skipDuplicates"`
	Start            int    `json:"start" validate:"min=0"`
	Count            int    `json:"count" validate:"required,min=1,max=500"`
}

// StartResponse acknowledges an accepted background job.
type StartResponse struct {
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// ResumeResponse acknowledges a resumed job and echoes where it picks up.
type ResumeResponse struct {
	Status  string `json:"status"`
	Current int    `json:"current"`
	Total   int    `json:"total"`
}
