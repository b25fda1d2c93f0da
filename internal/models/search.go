package models

// Source selects which announcement catalogs a search runs against.
type Source string

const (
	SourceAll      Source = "all"
	SourceKStartup Source = "kstartup"
	SourceBizinfo  Source = "bizinfo"
)

// Valid reports whether s is a recognized source value.
func (s Source) Valid() bool {
	switch s {
	case SourceAll, SourceKStartup, SourceBizinfo:
		return true
	}
	return false
}

// Includes reports whether catalog c is selected by s.
func (s Source) Includes(c Source) bool {
	return s == SourceAll || s == c
}

// HybridSearchRequest is the request for hybrid search.
// Limit is a pointer so an absent field (default 20) can be told apart
// from an explicit 0 (empty result).
type HybridSearchRequest struct {
	Query  string `json:"query"`
	Source Source `json:"source"`
	Limit  *int   `json:"limit"`
}

// SearchResult is one ranked announcement, shaped identically for both
// catalogs.
type SearchResult struct {
	Source             string  `json:"source"`
	AnnouncementID     string  `json:"announcement_id"`
	Title              string  `json:"title"`
	Organization       string  `json:"organization"`
	StartDate          string  `json:"start_date"`
	EndDate            string  `json:"end_date"`
	Summary            *string `json:"summary"`
	HasWritableContent *bool   `json:"has_writable_content"`
	VectorScore        float64 `json:"vector_score"`
	KeywordScore       float64 `json:"keyword_score"`
	FinalScore         float64 `json:"final_score"`
}

// HybridSearchResponse is the response for hybrid search.
type HybridSearchResponse struct {
	Results []SearchResult `json:"results"`
	Total   int            `json:"total"`
	Query   string         `json:"query"`
}

// SearchLogEntry captures one search request for the search_logs table.
type SearchLogEntry struct {
	Query       string
	Source      Source
	Limit       int
	ResultCount int
	TopScore    *float64
	DurationMs  int64
}
