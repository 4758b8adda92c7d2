package cli

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/meghashyamc/wheresthat-client/api"
	"github.com/meghashyamc/wheresthat-client/config"
	"github.com/meghashyamc/wheresthat-client/db/kvdb"
	"github.com/meghashyamc/wheresthat-client/history"
	"github.com/meghashyamc/wheresthat-client/internal/fakebackend"
	"github.com/meghashyamc/wheresthat-client/logger"
	"github.com/meghashyamc/wheresthat-client/validation"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const numOfReports = 25

type testCLI struct {
	backend *fakebackend.Server
	root    *cobra.Command
	out     *bytes.Buffer
	paths   *history.List
	queries *history.List
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
	documents := []fakebackend.Document{
		{Path: "/data/docs/file1.txt", Name: "file1.txt", Content: "This is test content for file1", Size: 1536, ModTime: modTime},
		{Path: "/data/docs/subdir/file3.md", Name: "file3.md", Content: "# Test Markdown\n\nThis is a test markdown file", Size: 44, ModTime: modTime},
	}
	for i := 0; i < numOfReports; i++ {
		documents = append(documents, fakebackend.Document{
			Path:    fmt.Sprintf("/data/reports/report-%02d.txt", i),
			Name:    fmt.Sprintf("report-%02d.txt", i),
			Content: fmt.Sprintf("quarterly report number %d", i),
			Size:    2048,
			ModTime: modTime,
		})
	}
	return documents
}

func setupTestCLI(t *testing.T, assert *require.Assertions) *testCLI {
	color.NoColor = true
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

	out := new(bytes.Buffer)
	deps := Dependencies{
		Logger:       testLogger,
		Client:       client,
		Validator:    validator,
		Paths:        history.New(testLogger, kvDB, history.PathsList),
		Queries:      history.New(testLogger, kvDB, history.QueriesList),
		PollInterval: cfg.GetPollInterval(),
	}

	return &testCLI{
		backend: backend,
		root:    NewRootCommand(deps, out),
		out:     out,
		paths:   deps.Paths,
		queries: deps.Queries,
	}
}

func (c *testCLI) execute(args ...string) (string, error) {
	c.out.Reset()
	c.root.SetArgs(args)
	err := c.root.ExecuteContext(context.Background())
	return c.out.String(), err
}
