package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/meghashyamc/wheresthat-client/api"
	"github.com/meghashyamc/wheresthat-client/controller"
	"github.com/stretchr/testify/require"
)

var formatFileSizeTestCases = []struct {
	name     string
	bytes    int64
	expected string
}{
	{name: "Zero", bytes: 0, expected: "0 B"},
	{name: "Negative", bytes: -5, expected: "0 B"},
	{name: "Bytes", bytes: 512, expected: "512 B"},
	{name: "ExactKilobyte", bytes: 1024, expected: "1 KB"},
	{name: "FractionalKilobytes", bytes: 1536, expected: "1.5 KB"},
	{name: "RoundedToOneDecimal", bytes: 1100, expected: "1.1 KB"},
	{name: "Megabytes", bytes: 5 * 1024 * 1024, expected: "5 MB"},
	{name: "Gigabytes", bytes: 3 * 1024 * 1024 * 1024 / 2, expected: "1.5 GB"},
	{name: "BeyondGigabytes", bytes: 2 * 1024 * 1024 * 1024 * 1024, expected: "2048 GB"},
}

func TestFormatFileSize(t *testing.T) {
	for _, testCase := range formatFileSizeTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			assert.Equal(testCase.expected, formatFileSize(testCase.bytes))
		})
	}
}

var renderSnippetTestCases = []struct {
	name     string
	snippet  string
	expected string
}{
	{name: "Empty", snippet: "  ", expected: ""},
	{name: "NoHighlight", snippet: "plain text", expected: "plain text"},
	{name: "Highlights", snippet: "a <mark>test</mark> of <mark>marks</mark>", expected: "a test of marks"},
	{name: "Newlines", snippet: "line one\nline <mark>two</mark>", expected: "line one line two"},
	{name: "Unclosed", snippet: "broken <mark>tag", expected: "broken <mark>tag"},
}

func TestRenderSnippet(t *testing.T) {
	color.NoColor = true
	for _, testCase := range renderSnippetTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			assert.Equal(testCase.expected, renderSnippet(testCase.snippet))
		})
	}
}

func TestPresenterIndexEvents(t *testing.T) {
	assert := require.New(t)
	color.NoColor = true
	out := new(bytes.Buffer)
	presenter := NewPresenter(out)

	presenter.OnIndexEvent(controller.IndexEvent{Kind: controller.EventStarted, Path: "/data"})
	presenter.OnIndexEvent(controller.IndexEvent{Kind: controller.EventProgress, Path: "/data", Progress: 40})
	presenter.OnIndexEvent(controller.IndexEvent{Kind: controller.EventFailed, Path: "/data", Err: errors.New("disk full")})

	assert.Equal("Indexing files...\nIndexing files... 40%\nError: disk full\n", out.String())
}

func TestPresenterResults(t *testing.T) {
	assert := require.New(t)
	color.NoColor = true
	out := new(bytes.Buffer)
	presenter := NewPresenter(out)

	presenter.OnResults(&api.SearchResultPage{
		Items: []api.ResultItem{
			{Name: "notes.txt", Path: "/home/notes.txt", Size: 2048, ModTime: "2025-06-01T12:00:00Z"},
			{},
		},
		CurrentPage: 2,
		TotalPages:  4,
	})

	expected := "notes.txt\n" +
		"  /home/notes.txt\n" +
		"  Size: 2 KB  Modified: 2025-06-01T12:00:00Z\n" +
		"\n" +
		"Unknown file\n" +
		"  Unknown path\n" +
		"  Size: 0 B\n" +
		"\n" +
		"Page 2 of 4\n"
	assert.Equal(expected, out.String())
}

func TestPresenterList(t *testing.T) {
	assert := require.New(t)
	color.NoColor = true
	out := new(bytes.Buffer)
	presenter := NewPresenter(out)

	presenter.List("Recent folders", []string{"/b", "/a"})
	presenter.List("Recent searches", nil)

	assert.Equal("Recent folders\n  1. /b\n  2. /a\nRecent searches\n  (empty)\n", out.String())
}
