package controller

import (
	"context"
	"strings"
	"sync"

	"github.com/meghashyamc/wheresthat-client/api"
	"github.com/meghashyamc/wheresthat-client/logger"
	"github.com/meghashyamc/wheresthat-client/validation"
)

type Searcher interface {
	Search(ctx context.Context, request api.SearchRequest) (*api.SearchResultPage, error)
}

type SearchState struct {
	Query       string
	CurrentPage int
	TotalPages  int
	Busy        bool
}

// SearchController runs one search at a time and remembers where the caller is
// in the result pages.
type SearchController struct {
	logger    logger.Logger
	searcher  Searcher
	validator *validation.Validator
	history   HistoryRecorder
	observer  SearchObserver

	mu          sync.Mutex
	busy        bool
	query       string
	currentPage int
	totalPages  int
	lastPage    *api.SearchResultPage
}

func NewSearchController(logger logger.Logger, searcher Searcher, validator *validation.Validator, history HistoryRecorder, observer SearchObserver) *SearchController {
	if observer == nil {
		observer = noopObserver{}
	}
	return &SearchController{
		logger:      logger,
		searcher:    searcher,
		validator:   validator,
		history:     history,
		observer:    observer,
		currentPage: 1,
		totalPages:  1,
	}
}

func (c *SearchController) Search(ctx context.Context, query string, page int) (*api.SearchResultPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, api.ErrEmptyQuery
	}

	request := api.SearchRequest{
		Query:   query,
		Page:    page,
		PerPage: api.DefaultPageSize,
	}
	if err := c.validator.Validate(request); err != nil {
		return nil, toValidationError(err)
	}

	if !c.acquire() {
		c.logger.Warn("search requested while another search is in progress", "query", query)
		return nil, &api.BusyError{Operation: "search"}
	}
	defer c.release()

	c.logger.Info("performing search", "query", query, "page", page)
	result, err := c.searcher.Search(ctx, request)
	if err != nil {
		c.logger.Warn("search failed", "query", query, "page", page, "err", err.Error())
		return nil, err
	}

	c.mu.Lock()
	c.query = query
	c.currentPage = result.CurrentPage
	c.totalPages = result.TotalPages
	c.lastPage = result
	c.mu.Unlock()

	if err := c.history.Record(query); err != nil {
		c.logger.Warn("could not record query in history", "query", query, "err", err.Error())
	}
	c.logger.Info("search completed", "query", query, "page", result.CurrentPage, "total_pages", result.TotalPages, "returned_results", len(result.Items))

	c.observer.OnResults(result)

	return result, nil
}

// PreviousPage returns the current page unchanged, without a request, when
// there is no earlier page.
func (c *SearchController) PreviousPage(ctx context.Context) (*api.SearchResultPage, error) {
	c.mu.Lock()
	if c.lastPage == nil || c.currentPage <= 1 {
		lastPage := c.lastPage
		c.mu.Unlock()
		return lastPage, nil
	}
	query, page := c.query, c.currentPage-1
	c.mu.Unlock()

	return c.Search(ctx, query, page)
}

// NextPage returns the current page unchanged, without a request, when there
// is no later page.
func (c *SearchController) NextPage(ctx context.Context) (*api.SearchResultPage, error) {
	c.mu.Lock()
	if c.lastPage == nil || c.currentPage >= c.totalPages {
		lastPage := c.lastPage
		c.mu.Unlock()
		return lastPage, nil
	}
	query, page := c.query, c.currentPage+1
	c.mu.Unlock()

	return c.Search(ctx, query, page)
}

func (c *SearchController) State() SearchState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return SearchState{
		Query:       c.query,
		CurrentPage: c.currentPage,
		TotalPages:  c.totalPages,
		Busy:        c.busy,
	}
}

// LastPage is the most recent successful result page, or nil before the first search.
func (c *SearchController) LastPage() *api.SearchResultPage {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lastPage
}

func (c *SearchController) acquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy {
		return false
	}
	c.busy = true
	return true
}

func (c *SearchController) release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.busy = false
}
