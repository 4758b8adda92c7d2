package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/meghashyamc/wheresthat-client/logger"
)

const (
	HeaderRequestID = "X-Request-ID"

	maxResponseBytes = 16 << 20

	msgIndexFailed  = "Failed to index files"
	msgStatusFailed = "Failed to get indexing status"
	msgSearchFailed = "Search failed"
	msgNoStatus     = "indexing status not available"
)

// Client talks to the wheresthat backend over its JSON HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

func NewClient(logger logger.Logger, baseURL string, httpClient *http.Client) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		logger.Error("invalid backend base url", "base_url", baseURL)
		return nil, fmt.Errorf("invalid backend base url %q", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// SubmitIndex asks the backend to index request.Path. A backend that indexes
// synchronously answers with an empty body; one that indexes in the background
// answers with a request id to poll.
func (c *Client) SubmitIndex(ctx context.Context, request IndexRequest) (*IndexSubmission, error) {
	statusCode, body, err := c.do(ctx, http.MethodPost, "/index", nil, request)
	if err != nil {
		return nil, err
	}

	if !isSuccess(statusCode) {
		return nil, c.requestFailed(statusCode, body, msgIndexFailed)
	}

	submission := &IndexSubmission{}
	if len(bytes.TrimSpace(body)) == 0 {
		return submission, nil
	}

	var response envelope[indexSubmitData]
	if err := json.Unmarshal(body, &response); err != nil {
		c.logger.Warn("could not decode index submission body, treating as completed", "err", err.Error())
		return submission, nil
	}
	if response.Data != nil {
		submission.RequestID = response.Data.RequestID
	}

	return submission, nil
}

func (c *Client) GetIndexStatus(ctx context.Context, requestID string) (*IndexStatus, error) {
	statusCode, body, err := c.do(ctx, http.MethodGet, "/index/"+url.PathEscape(requestID), nil, nil)
	if err != nil {
		return nil, err
	}

	if !isSuccess(statusCode) {
		return nil, c.requestFailed(statusCode, body, msgStatusFailed)
	}

	var response envelope[indexStatusData]
	if err := json.Unmarshal(body, &response); err != nil {
		c.logger.Warn("could not decode index status body", "request_id", requestID, "err", err.Error())
		return nil, &TransportError{Op: "decode index status", Err: err}
	}
	if response.Data == nil || response.Data.Status == nil {
		c.logger.Warn("index status missing from response", "request_id", requestID)
		return nil, newRequestFailedError(statusCode, response.Errors, msgNoStatus)
	}

	return &IndexStatus{RequestID: requestID, Progress: *response.Data.Status}, nil
}

func (c *Client) Search(ctx context.Context, request SearchRequest) (*SearchResultPage, error) {
	if request.PerPage == 0 {
		request.PerPage = DefaultPageSize
	}
	query := url.Values{}
	query.Set("query", request.Query)
	query.Set("page", strconv.Itoa(request.Page))
	query.Set("per_page", strconv.Itoa(request.PerPage))

	statusCode, body, err := c.do(ctx, http.MethodGet, "/search", query, nil)
	if err != nil {
		return nil, err
	}

	if !isSuccess(statusCode) {
		return nil, c.requestFailed(statusCode, body, msgSearchFailed)
	}

	var response envelope[searchData]
	if err := json.Unmarshal(body, &response); err != nil {
		c.logger.Warn("could not decode search body", "query", request.Query, "err", err.Error())
		return nil, &TransportError{Op: "decode search results", Err: err}
	}

	return newSearchResultPage(request, response.Data), nil
}

func (c *Client) Health(ctx context.Context) error {
	statusCode, body, err := c.do(ctx, http.MethodGet, "/health", nil, nil)
	if err != nil {
		return err
	}
	if !isSuccess(statusCode) {
		return c.requestFailed(statusCode, body, "backend is unhealthy")
	}
	return nil
}

func (c *Client) do(ctx context.Context, method string, path string, query url.Values, requestBody any) (int, []byte, error) {
	op := method + " " + path
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint = endpoint + "?" + query.Encode()
	}

	var bodyReader io.Reader
	if requestBody != nil {
		jsonBody, err := json.Marshal(requestBody)
		if err != nil {
			c.logger.Error("could not encode request body", "op", op, "err", err.Error())
			return 0, nil, fmt.Errorf("could not encode request body for %s: %w", op, err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		c.logger.Error("could not build request", "op", op, "err", err.Error())
		return 0, nil, &TransportError{Op: op, Err: err}
	}
	requestID := uuid.New().String()
	req.Header.Set(HeaderRequestID, requestID)
	req.Header.Set("Accept", "application/json")
	if requestBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("request", "method", method, "path", path, "x_request_id", requestID)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.logger.Debug("request cancelled", "op", op)
		} else {
			c.logger.Warn("request failed", "op", op, "err", err.Error())
		}
		return 0, nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.logger.Warn("could not read response body", "op", op, "err", err.Error())
		return 0, nil, &TransportError{Op: op, Err: err}
	}
	c.logger.Debug("response", "method", method, "path", path, "status", resp.StatusCode, "x_request_id", requestID)

	return resp.StatusCode, body, nil
}

func (c *Client) requestFailed(statusCode int, body []byte, fallback string) *RequestFailedError {
	var response envelope[json.RawMessage]
	if err := json.Unmarshal(body, &response); err != nil && len(bytes.TrimSpace(body)) > 0 {
		c.logger.Debug("could not decode error body", "status", statusCode, "err", err.Error())
	}
	failure := newRequestFailedError(statusCode, response.Errors, fallback)
	c.logger.Warn("backend returned failure", "status", statusCode, "errors", failure.Messages)
	return failure
}

func newSearchResultPage(request SearchRequest, data *searchData) *SearchResultPage {
	page := &SearchResultPage{
		Query:       request.Query,
		Items:       []ResultItem{},
		CurrentPage: request.Page,
		TotalPages:  1,
		PageSize:    request.PerPage,
	}
	var details *PageDetails
	if data != nil {
		if data.Results != nil {
			page.Items = data.Results
		}
		details = data.PageDetails
	}
	if details != nil {
		if details.TotalPages > 0 {
			page.TotalPages = details.TotalPages
		}
		if details.CurrentPage > 0 {
			page.CurrentPage = details.CurrentPage
		}
		if details.PageSize > 0 {
			page.PageSize = details.PageSize
		}
		page.TotalResults = details.TotalResults
	}
	page.CurrentPage = min(max(page.CurrentPage, 1), page.TotalPages)

	return page
}

func isSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
