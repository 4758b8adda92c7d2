package controller

import (
	"fmt"

	"github.com/meghashyamc/wheresthat-client/api"
)

type IndexEventKind int

const (
	EventStarted IndexEventKind = iota
	EventProgress
	EventCompleted
	EventFailed
)

func (k IndexEventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventProgress:
		return "progress"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	default:
		return fmt.Sprintf("IndexEventKind(%d)", int(k))
	}
}

type IndexEvent struct {
	Kind      IndexEventKind
	Path      string
	RequestID string
	Progress  int
	Err       error
}

// Message is the status line a UI would show for the event.
func (e IndexEvent) Message() string {
	switch e.Kind {
	case EventStarted:
		return "Indexing files..."
	case EventProgress:
		return fmt.Sprintf("Indexing files... %d%%", e.Progress)
	case EventCompleted:
		return fmt.Sprintf("Successfully indexed files from %s", e.Path)
	case EventFailed:
		return fmt.Sprintf("Error: %s", e.Err)
	default:
		return ""
	}
}

// IndexObserver receives index job events on the goroutine that produced them.
// Implementations must not call back into the IndexJobController that emitted
// the event.
type IndexObserver interface {
	OnIndexEvent(event IndexEvent)
}

type IndexObserverFunc func(event IndexEvent)

func (f IndexObserverFunc) OnIndexEvent(event IndexEvent) {
	f(event)
}

type SearchObserver interface {
	OnResults(page *api.SearchResultPage)
}

type SearchObserverFunc func(page *api.SearchResultPage)

func (f SearchObserverFunc) OnResults(page *api.SearchResultPage) {
	f(page)
}

// HistoryRecorder is the part of a history list the controllers write to.
type HistoryRecorder interface {
	Record(value string) error
}

type noopObserver struct{}

func (noopObserver) OnIndexEvent(IndexEvent)          {}
func (noopObserver) OnResults(*api.SearchResultPage) {}
