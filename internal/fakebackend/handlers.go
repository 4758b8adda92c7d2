package fakebackend

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const defaultResultsPerPage = 20

type IndexRequest struct {
	Path           string   `json:"path" validate:"required,valid_path"`
	ExcludeFolders []string `json:"exclude_folders" validate:"omitempty,valid_paths"`
}

type IndexStatusRequest struct {
	ID string `uri:"request_id" json:"request_id" validate:"required"`
}

type IndexResponse struct {
	ID string `json:"request_id"`
}

type IndexStatusResponse struct {
	Status int    `json:"status"`
	ID     string `json:"request_id"`
}

type SearchRequest struct {
	Query   string `form:"query" json:"query" validate:"required,valid_query,min=1,max=1000"`
	PerPage int    `form:"per_page" json:"per_page" validate:"min=0,max=100"`
	Page    int    `form:"page" json:"page" validate:"min=0"`
}

func (r *SearchRequest) setDefaults() {
	if r.PerPage == 0 {
		r.PerPage = defaultResultsPerPage
	}

	if r.Page == 0 {
		r.Page = 1
	}
}

type SearchResponse struct {
	Results     []result   `json:"results"`
	PageDetails Pagination `json:"page_details"`
}

func (s *Server) handleCreateIndex() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.indexSubmissions.Add(1)

		request := IndexRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			s.logger.Warn("could not extract expected params from the input", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}
		if err := s.validator.Validate(request); err != nil {
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}
		if err := semanticallyValidateExcludePaths(request); err != nil {
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		s.mu.Lock()
		s.lastIndex = request
		indexFailure := s.indexFailure
		syncIndexing := s.syncIndexing
		s.mu.Unlock()

		if indexFailure != nil {
			writeResponse(c, nil, indexFailure.code, indexFailure.errors)
			return
		}

		if syncIndexing {
			writeResponse(c, nil, http.StatusNoContent, nil)
			return
		}

		requestID := uuid.New().String()
		s.mu.Lock()
		s.requestIDs = append(s.requestIDs, requestID)
		s.mu.Unlock()

		writeResponse(c, IndexResponse{ID: requestID}, http.StatusAccepted, nil)
	}
}

func semanticallyValidateExcludePaths(request IndexRequest) error {
	for _, path := range request.ExcludeFolders {
		if path == request.Path {
			return errors.New("path to exclude cannot be the same as index path")
		}

		if !strings.HasPrefix(path, request.Path) {
			return errors.New("path to exclude must begin with the index path")
		}
	}
	return nil
}

func (s *Server) handleGetIndexStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		request := IndexStatusRequest{}
		if err := c.ShouldBindUri(&request); err != nil {
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract URL parameters"})
			return
		}

		s.mu.Lock()
		known := slices.Contains(s.requestIDs, request.ID)
		hold := s.statusHold
		s.mu.Unlock()

		if !known {
			writeResponse(c, nil, http.StatusNotFound, []string{"request not found"})
			return
		}
		poll := int(s.statusPolls.Add(1))

		if hold != nil {
			select {
			case <-hold:
			case <-c.Request.Context().Done():
				return
			}
		}

		step := s.statusStep(poll)
		if step.RawBody != "" {
			c.Data(step.Code, "application/json", []byte(step.RawBody))
			return
		}
		if step.Status == nil {
			writeResponse(c, nil, step.Code, step.Errors)
			return
		}

		writeResponse(c, IndexStatusResponse{Status: *step.Status, ID: request.ID}, step.Code, step.Errors)
	}
}

func (s *Server) statusStep(poll int) StatusStep {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.statusScript) == 0 {
		return Progress(ProgressStatusComplete)
	}
	return s.statusScript[min(poll, len(s.statusScript))-1]
}

func (s *Server) handleSearch() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.searches.Add(1)

		request := SearchRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}
		request.setDefaults()

		s.mu.Lock()
		s.lastSearch = request
		searchFailure := s.searchFailure
		s.mu.Unlock()

		if err := s.validator.Validate(request); err != nil {
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		if searchFailure != nil {
			writeResponse(c, nil, searchFailure.code, searchFailure.errors)
			return
		}

		limit := request.PerPage
		offset := (request.Page - 1) * request.PerPage
		results, total, err := s.index.search(request.Query, limit, offset)
		if err != nil {
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		searchResponse := SearchResponse{
			Results:     results,
			PageDetails: calculatePagination(int(total), limit, offset),
		}

		writeResponse(c, searchResponse, http.StatusOK, nil)
	}
}
