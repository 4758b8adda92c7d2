// Common test helpers
package controller

import (
	"fmt"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/meghashyamc/wheresthat-client/api"
	"github.com/meghashyamc/wheresthat-client/config"
	"github.com/meghashyamc/wheresthat-client/db/kvdb"
	"github.com/meghashyamc/wheresthat-client/history"
	"github.com/meghashyamc/wheresthat-client/internal/fakebackend"
	"github.com/meghashyamc/wheresthat-client/logger"
	"github.com/meghashyamc/wheresthat-client/validation"
	"github.com/stretchr/testify/require"
)

const (
	testPollInterval = 20 * time.Millisecond
	eventTimeout     = 5 * time.Second
)

var testFiles = map[string]string{
	"/data/docs/file1.txt":              "This is test content for file1",
	"/data/docs/file2.go":               "package main\n\nfunc main() {\n\tprint(\"Hello\")\n}",
	"/data/docs/subdir/file3.md":        "# Test Markdown\n\nThis is a test markdown file",
	"/data/docs/subdir/file4.json":      `{"key": "value", "number": 42}`,
	"/data/docs/subdir/nested/file5.py": "def hello():\n    print('Hello World')",
}

// numOfReports is chosen to give three pages of ten.
const numOfReports = 25

type testEnv struct {
	backend  *fakebackend.Server
	client   *api.Client
	paths    *history.List
	queries  *history.List
	recorder *eventRecorder
	index    *IndexJobController
	search   *SearchController
	results  *resultRecorder
}

func newTestLogger() logger.Logger {

	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

func testDocuments() []fakebackend.Document {
	modTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var documents []fakebackend.Document
	for path, content := range testFiles {
		documents = append(documents, fakebackend.Document{
			Path:    path,
			Name:    filepath.Base(path),
			Content: content,
			Size:    int64(len(content)),
			ModTime: modTime,
		})
	}
	for i := 0; i < numOfReports; i++ {
		content := fmt.Sprintf("quarterly report number %d", i)
		documents = append(documents, fakebackend.Document{
			Path:    fmt.Sprintf("/data/reports/report-%02d.txt", i),
			Name:    fmt.Sprintf("report-%02d.txt", i),
			Content: content,
			Size:    int64(len(content)),
			ModTime: modTime,
		})
	}
	return documents
}

func setupTestEnv(t *testing.T, assert *require.Assertions) *testEnv {
	t.Setenv("HISTORY_DB_PATH", filepath.Join(t.TempDir(), "history.db"))

	cfg, err := config.Load("test")
	assert.NoError(err, "could not load config")

	testLogger := newTestLogger()

	backend, err := fakebackend.New(testLogger, testDocuments())
	assert.NoError(err, "could not start fake backend")
	t.Cleanup(backend.Close)

	kvDB, err := kvdb.New(testLogger, cfg)
	assert.NoError(err, "could not create kv database")
	t.Cleanup(func() {
		assert.NoError(kvDB.Close(), "could not close kv database")
	})

	validator, err := validation.New(testLogger)
	assert.NoError(err, "could not create validator")

	client, err := api.NewClient(testLogger, backend.URL(), nil)
	assert.NoError(err, "could not create api client")

	env := &testEnv{
		backend:  backend,
		client:   client,
		paths:    history.New(testLogger, kvDB, history.PathsList),
		queries:  history.New(testLogger, kvDB, history.QueriesList),
		recorder: newEventRecorder(),
		results:  &resultRecorder{},
	}
	env.index = NewIndexJobController(testLogger, client, validator, env.paths, env.recorder, testPollInterval)
	env.search = NewSearchController(testLogger, client, validator, env.queries, env.results)

	return env
}

// closedBackendURL points at a server that is no longer listening.
func closedBackendURL() string {
	server := httptest.NewServer(nil)
	url := server.URL
	server.Close()
	return url
}

type eventRecorder struct {
	mu     sync.Mutex
	events []IndexEvent
	c      chan IndexEvent
}

func newEventRecorder() *eventRecorder {
	return &eventRecorder{c: make(chan IndexEvent, 100)}
}

func (r *eventRecorder) OnIndexEvent(event IndexEvent) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	select {
	case r.c <- event:
	default:
	}
}

func (r *eventRecorder) all() []IndexEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]IndexEvent(nil), r.events...)
}

func (r *eventRecorder) kinds() []IndexEventKind {
	var kinds []IndexEventKind
	for _, event := range r.all() {
		kinds = append(kinds, event.Kind)
	}
	return kinds
}

func (r *eventRecorder) waitFor(assert *require.Assertions, kind IndexEventKind) IndexEvent {
	timeout := time.After(eventTimeout)
	for {
		select {
		case event := <-r.c:
			if event.Kind == kind {
				return event
			}
		case <-timeout:
			assert.FailNow("timed out waiting for event", kind.String())
			return IndexEvent{}
		}
	}
}

type resultRecorder struct {
	mu    sync.Mutex
	pages []*api.SearchResultPage
}

func (r *resultRecorder) OnResults(page *api.SearchResultPage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = append(r.pages, page)
}

func (r *resultRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages)
}

type memoryHistory struct {
	mu     sync.Mutex
	values []string
}

func (m *memoryHistory) Record(value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = append(m.values, value)
	return nil
}

func progressEvents(events []IndexEvent) []int {
	var progress []int
	for _, event := range events {
		if event.Kind == EventProgress {
			progress = append(progress, event.Progress)
		}
	}
	return progress
}
