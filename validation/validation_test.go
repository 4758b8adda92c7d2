package validation

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/meghashyamc/wheresthat-client/logger"
	"github.com/stretchr/testify/require"
)

type testRequest struct {
	Path           string   `json:"path" validate:"required,valid_path"`
	ExcludeFolders []string `json:"exclude_folders" validate:"omitempty,valid_paths"`
	Query          string   `json:"query" validate:"required,valid_query,max=1000"`
	Page           int      `json:"page" validate:"min=1"`
}

func newTestLogger() logger.Logger {
	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

func validRequest() testRequest {
	return testRequest{Path: "/home/docs", Query: "golang", Page: 1}
}

var validateTestCases = []struct {
	name           string
	modify         func(r *testRequest)
	expectedField  string
	expectedReason string
}{
	{
		name:   "Valid",
		modify: func(r *testRequest) {},
	},
	{
		name:   "ValidWithExcludes",
		modify: func(r *testRequest) { r.ExcludeFolders = []string{"/home/docs/node_modules"} },
	},
	{
		name:           "MissingPath",
		modify:         func(r *testRequest) { r.Path = "" },
		expectedField:  "path",
		expectedReason: "missing required field 'path'",
	},
	{
		name:           "WhitespacePath",
		modify:         func(r *testRequest) { r.Path = "   " },
		expectedField:  "path",
		expectedReason: "invalid path",
	},
	{
		name:           "NullBytePath",
		modify:         func(r *testRequest) { r.Path = "/home/\x00docs" },
		expectedField:  "path",
		expectedReason: "invalid path",
	},
	{
		name:           "BlankExclude",
		modify:         func(r *testRequest) { r.ExcludeFolders = []string{"/home/docs/a", " "} },
		expectedField:  "exclude_folders",
		expectedReason: "invalid path in list",
	},
	{
		name:           "WhitespaceQuery",
		modify:         func(r *testRequest) { r.Query = " \t " },
		expectedField:  "query",
		expectedReason: "invalid query",
	},
	{
		name:           "QueryTooLong",
		modify:         func(r *testRequest) { r.Query = strings.Repeat("a", 1001) },
		expectedField:  "query",
		expectedReason: "value or length of field 'query' is not in the expected range",
	},
	{
		name:           "PageZero",
		modify:         func(r *testRequest) { r.Page = 0 },
		expectedField:  "page",
		expectedReason: "value or length of field 'page' is not in the expected range",
	},
}

func TestValidate(t *testing.T) {
	validator, err := New(newTestLogger())
	require.NoError(t, err, "could not create validator")

	for _, testCase := range validateTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			request := validRequest()
			testCase.modify(&request)

			err := validator.Validate(request)

			if testCase.expectedField == "" {
				assert.NoError(err)
				return
			}
			var fieldErr *FieldError
			assert.True(errors.As(err, &fieldErr), "expected a field error, got %v", err)
			assert.Equal(testCase.expectedField, fieldErr.Field)
			assert.Equal(testCase.expectedReason, fieldErr.Reason)
		})
	}
}
