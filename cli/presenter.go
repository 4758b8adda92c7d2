package cli

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/meghashyamc/wheresthat-client/api"
	"github.com/meghashyamc/wheresthat-client/controller"
)

const noResultsMessage = "No results found for your search query."

// Presenter renders controller events and result pages as console text.
type Presenter struct {
	out io.Writer

	info    *color.Color
	success *color.Color
	failure *color.Color
	name    *color.Color
	faint   *color.Color
}

func NewPresenter(out io.Writer) *Presenter {
	return &Presenter{
		out:     out,
		info:    color.New(color.FgCyan),
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
		name:    color.New(color.Bold),
		faint:   color.New(color.Faint),
	}
}

func (p *Presenter) OnIndexEvent(event controller.IndexEvent) {
	switch event.Kind {
	case controller.EventCompleted:
		p.success.Fprintln(p.out, event.Message())
	case controller.EventFailed:
		p.failure.Fprintln(p.out, event.Message())
	default:
		p.info.Fprintln(p.out, event.Message())
	}
}

func (p *Presenter) OnResults(page *api.SearchResultPage) {
	if len(page.Items) == 0 {
		fmt.Fprintln(p.out, noResultsMessage)
	}

	for _, item := range page.Items {
		name := item.Name
		if name == "" {
			name = "Unknown file"
		}
		path := item.Path
		if path == "" {
			path = "Unknown path"
		}

		p.name.Fprintln(p.out, name)
		fmt.Fprintf(p.out, "  %s\n", path)

		info := "  Size: " + formatFileSize(item.Size)
		if item.ModTime != "" {
			info += "  Modified: " + item.ModTime
		}
		p.faint.Fprintln(p.out, info)

		if snippet := renderSnippet(item.Snippet); snippet != "" {
			fmt.Fprintf(p.out, "  %s\n", snippet)
		}
		fmt.Fprintln(p.out)
	}

	fmt.Fprintf(p.out, "Page %d of %d\n", page.CurrentPage, page.TotalPages)
}

// Error prints err the way index failures are shown.
func (p *Presenter) Error(err error) {
	p.failure.Fprintf(p.out, "Error: %s\n", err)
}

func (p *Presenter) List(title string, entries []string) {
	p.name.Fprintln(p.out, title)
	if len(entries) == 0 {
		p.faint.Fprintln(p.out, "  (empty)")
		return
	}
	for i, entry := range entries {
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, entry)
	}
}

// renderSnippet swaps the backend's <mark> highlighting for terminal emphasis.
func renderSnippet(snippet string) string {
	snippet = strings.TrimSpace(strings.ReplaceAll(snippet, "\n", " "))
	if snippet == "" {
		return ""
	}

	highlight := color.New(color.FgYellow, color.Bold)
	var b strings.Builder
	for {
		start := strings.Index(snippet, "<mark>")
		if start < 0 {
			break
		}
		end := strings.Index(snippet[start:], "</mark>")
		if end < 0 {
			break
		}
		end += start
		b.WriteString(snippet[:start])
		b.WriteString(highlight.Sprint(snippet[start+len("<mark>") : end]))
		snippet = snippet[end+len("</mark>"):]
	}
	b.WriteString(snippet)

	return b.String()
}

// formatFileSize renders a byte count with 1024-based units and at most one
// decimal, dropping a trailing ".0".
func formatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}

	units := []string{"B", "KB", "MB", "GB"}
	value := float64(bytes)
	exponent := 0
	for value >= 1024 && exponent < len(units)-1 {
		value /= 1024
		exponent++
	}
	value = math.Round(value*10) / 10

	return strconv.FormatFloat(value, 'f', -1, 64) + " " + units[exponent]
}
