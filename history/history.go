// Package history keeps the bounded recency lists of indexed folder paths and
// search queries.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/meghashyamc/wheresthat-client/db/kvdb"
	"github.com/meghashyamc/wheresthat-client/logger"
)

const (
	PathsList   = "recentPaths"
	QueriesList = "recentQueries"

	MaxEntries = 5
)

// Store is the persistence needed by a List.
type Store interface {
	Set(bucket string, key string, value string) error
	Get(bucket string, key string) (string, error)
	Delete(bucket string, key string) error
}

// List is a most-recent-first sequence of unique strings capped at MaxEntries.
// Recording a value that is already present leaves the list untouched.
type List struct {
	name    string
	logger  logger.Logger
	store   Store
	mu      sync.Mutex
	entries []string
}

// New loads the persisted list once; later reads are served from memory.
func New(logger logger.Logger, store Store, name string) *List {
	l := &List{
		name:   name,
		logger: logger,
		store:  store,
	}
	l.entries = l.read()
	return l
}

func (l *List) Name() string {
	return l.name
}

func (l *List) Load() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return slices.Clone(l.entries)
}

func (l *List) Record(value string) error {
	if value == "" {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if slices.Contains(l.entries, value) {
		return nil
	}

	entries := append([]string{value}, l.entries...)
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}

	if err := l.write(entries); err != nil {
		return err
	}
	l.entries = entries

	return nil
}

func (l *List) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Delete(kvdb.HistoryBucket, l.name); err != nil {
		l.logger.Error("failed to clear history", "list", l.name, "err", err.Error())
		return fmt.Errorf("failed to clear history %s: %w", l.name, err)
	}
	l.entries = nil

	return nil
}

func (l *List) read() []string {
	value, err := l.store.Get(kvdb.HistoryBucket, l.name)
	if err != nil {
		if !errors.Is(err, kvdb.ErrNotFound) {
			l.logger.Warn("failed to read history, starting empty", "list", l.name, "err", err.Error())
		}
		return []string{}
	}

	var entries []string
	if err := json.Unmarshal([]byte(value), &entries); err != nil {
		l.logger.Warn("history is corrupt, starting empty", "list", l.name, "err", err.Error())
		return []string{}
	}

	return normalize(entries)
}

func (l *List) write(entries []string) error {
	data, err := json.Marshal(entries)
	if err != nil {
		l.logger.Error("failed to marshal history", "list", l.name, "err", err.Error())
		return fmt.Errorf("failed to marshal history %s: %w", l.name, err)
	}

	if err := l.store.Set(kvdb.HistoryBucket, l.name, string(data)); err != nil {
		l.logger.Error("failed to persist history", "list", l.name, "err", err.Error())
		return fmt.Errorf("failed to persist history %s: %w", l.name, err)
	}

	return nil
}

// normalize drops empties and duplicates from a stored list and enforces the cap,
// keeping the first occurrence of each value.
func normalize(entries []string) []string {
	normalized := make([]string, 0, min(len(entries), MaxEntries))
	for _, entry := range entries {
		if entry == "" || slices.Contains(normalized, entry) {
			continue
		}
		normalized = append(normalized, entry)
		if len(normalized) == MaxEntries {
			break
		}
	}
	return normalized
}
