// Package fakebackend serves the wheresthat backend HTTP contract from memory so
// the client can be exercised end to end without a real indexer.
package fakebackend

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/wheresthat-client/logger"
	"github.com/meghashyamc/wheresthat-client/validation"
)

const (
	ProgressStatusComplete = 100
	ProgressStatusFailed   = -1
)

// StatusStep is one scripted answer to GET /index/:request_id.
type StatusStep struct {
	Code    int
	Status  *int
	Errors  []string
	RawBody string
}

// Progress answers the way the backend does: 202 while running, 200 when
// complete and 500 once the build failed.
func Progress(status int) StatusStep {
	code := http.StatusAccepted
	switch {
	case status >= ProgressStatusComplete:
		code = http.StatusOK
	case status == ProgressStatusFailed:
		code = http.StatusInternalServerError
	}
	return StatusStep{Code: code, Status: &status}
}

func Failure(code int, errors ...string) StatusStep {
	return StatusStep{Code: code, Errors: errors}
}

func Malformed() StatusStep {
	return StatusStep{Code: http.StatusOK, RawBody: "{not json"}
}

type failure struct {
	code   int
	errors []string
}

type Server struct {
	logger     logger.Logger
	router     *gin.Engine
	httpServer *httptest.Server
	index      *searchIndex
	validator  *validation.Validator

	mu            sync.Mutex
	syncIndexing  bool
	indexFailure  *failure
	searchFailure *failure
	statusScript  []StatusStep
	statusHold    chan struct{}
	requestIDs    []string
	lastIndex     IndexRequest
	lastSearch    SearchRequest
	clientIDs     []string

	indexSubmissions atomic.Int64
	statusPolls      atomic.Int64
	searches         atomic.Int64
}

func New(logger logger.Logger, documents []Document) (*Server, error) {
	index, err := newSearchIndex(logger)
	if err != nil {
		return nil, err
	}
	if err := index.add(documents); err != nil {
		index.close()
		return nil, err
	}
	validator, err := validation.New(logger)
	if err != nil {
		index.close()
		return nil, err
	}

	s := &Server{
		logger:       logger,
		index:        index,
		validator:    validator,
		statusScript: []StatusStep{Progress(ProgressStatusComplete)},
	}
	s.setupRouter()
	s.httpServer = httptest.NewServer(s.router)

	return s, nil
}

func (s *Server) setupRouter() {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.UseRawPath = true
	router.Use(gin.Recovery())
	router.Use(s.loggingMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	router.POST("/index", s.handleCreateIndex())
	router.GET("/index/:request_id", s.handleGetIndexStatus())
	router.GET("/search", s.handleSearch())

	s.router = router
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.logger.Info("request", "method", c.Request.Method, "path", c.Request.URL.Path)
		s.mu.Lock()
		s.clientIDs = append(s.clientIDs, c.GetHeader("X-Request-ID"))
		s.mu.Unlock()
		c.Next()
	}
}

func (s *Server) URL() string {
	return s.httpServer.URL
}

func (s *Server) Close() {
	s.ReleaseStatusPolls()
	s.httpServer.Close()
	if err := s.index.close(); err != nil {
		s.logger.Error("could not close search index", "err", err.Error())
	}
}

// SetSyncIndexing makes POST /index answer 204 once indexing is done, as the
// first backend revision did, instead of handing out a request id.
func (s *Server) SetSyncIndexing(sync bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncIndexing = sync
}

// SetStatusScript sets the answers to successive status polls; the last step
// repeats once the script runs out.
func (s *Server) SetStatusScript(steps ...StatusStep) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusScript = slices.Clone(steps)
	s.statusPolls.Store(0)
}

func (s *Server) FailIndexing(code int, errors ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexFailure = &failure{code: code, errors: errors}
}

func (s *Server) FailSearch(code int, errors ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchFailure = &failure{code: code, errors: errors}
}

// HoldStatusPolls blocks status answers until ReleaseStatusPolls or the client gives up.
func (s *Server) HoldStatusPolls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statusHold == nil {
		s.statusHold = make(chan struct{})
	}
}

func (s *Server) ReleaseStatusPolls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statusHold != nil {
		close(s.statusHold)
		s.statusHold = nil
	}
}

func (s *Server) IndexSubmissions() int {
	return int(s.indexSubmissions.Load())
}

func (s *Server) StatusPolls() int {
	return int(s.statusPolls.Load())
}

func (s *Server) Searches() int {
	return int(s.searches.Load())
}

func (s *Server) LastIndexRequest() IndexRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastIndex
}

func (s *Server) LastSearchRequest() SearchRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSearch
}

// ClientRequestIDs lists the X-Request-ID header of every request received.
func (s *Server) ClientRequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.clientIDs)
}
