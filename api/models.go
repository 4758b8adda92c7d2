package api

const DefaultPageSize = 10

type IndexRequest struct {
	Path           string   `json:"path" validate:"required,valid_path"`
	ExcludeFolders []string `json:"exclude_folders,omitempty" validate:"omitempty,valid_paths"`
}

// IndexSubmission describes how the backend accepted an index request. An empty
// RequestID means the backend indexed synchronously and the job is already done.
type IndexSubmission struct {
	RequestID string
}

func (s *IndexSubmission) Async() bool {
	return s.RequestID != ""
}

type IndexStatus struct {
	RequestID string
	Progress  int
}

type SearchRequest struct {
	Query   string `json:"query" validate:"required,valid_query,max=1000"`
	Page    int    `json:"page" validate:"min=1"`
	PerPage int    `json:"per_page" validate:"min=1,max=100"`
}

type ResultItem struct {
	ID      string  `json:"id,omitempty"`
	Name    string  `json:"name"`
	Path    string  `json:"path"`
	Size    int64   `json:"size"`
	ModTime string  `json:"mod_time,omitempty"`
	Snippet string  `json:"snippet,omitempty"`
	Score   float64 `json:"score,omitempty"`
}

type PageDetails struct {
	CurrentPage  int  `json:"current_page"`
	PageSize     int  `json:"page_size"`
	TotalPages   int  `json:"total_pages"`
	HasNextPage  bool `json:"has_next_page"`
	HasPrevPage  bool `json:"has_prev_page"`
	TotalResults int  `json:"total_results"`
}

// SearchResultPage replaces the previous page wholesale; pages are never merged.
type SearchResultPage struct {
	Query        string       `json:"query"`
	Items        []ResultItem `json:"items"`
	CurrentPage  int          `json:"current_page"`
	TotalPages   int          `json:"total_pages"`
	PageSize     int          `json:"page_size"`
	TotalResults int          `json:"total_results"`
}

func (p *SearchResultPage) HasPrevPage() bool {
	return p.CurrentPage > 1
}

func (p *SearchResultPage) HasNextPage() bool {
	return p.CurrentPage < p.TotalPages
}

type envelope[T any] struct {
	Data   *T       `json:"data"`
	Errors []string `json:"errors"`
}

type indexSubmitData struct {
	RequestID string `json:"request_id"`
}

type indexStatusData struct {
	Status    *int   `json:"status"`
	RequestID string `json:"request_id"`
}

type searchData struct {
	Results     []ResultItem `json:"results"`
	PageDetails *PageDetails `json:"page_details"`
}
