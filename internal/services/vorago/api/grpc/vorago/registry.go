package vorago

import (
	"sync"

	"github.com/louisbranch/vorago/internal/services/vorago/domain/match"
	"github.com/louisbranch/vorago/internal/services/vorago/storage"
)

// liveMatch is the in-memory copy of one stored game. mu serializes every
// command issued against it.
type liveMatch struct {
	mu     sync.Mutex
	match  *match.Match
	record storage.GameRecord
}

// registry keeps one liveMatch per game id.
type registry struct {
	mu      sync.Mutex
	matches map[string]*liveMatch
}

func newRegistry() *registry {
	return &registry{matches: make(map[string]*liveMatch)}
}

// acquire returns the locked entry for id, creating an empty one on first
// use. Callers must unlock it.
func (r *registry) acquire(id string) *liveMatch {
	r.mu.Lock()
	entry, ok := r.matches[id]
	if !ok {
		entry = &liveMatch{}
		r.matches[id] = entry
	}
	r.mu.Unlock()

	entry.mu.Lock()
	return entry
}

// put stores a freshly created match.
func (r *registry) put(id string, m *match.Match, record storage.GameRecord) {
	entry := r.acquire(id)
	entry.match = m
	entry.record = record
	entry.mu.Unlock()
}

// reset drops the cached match so the next command reloads it from storage.
func (e *liveMatch) reset() {
	e.match = nil
	e.record = storage.GameRecord{}
}
