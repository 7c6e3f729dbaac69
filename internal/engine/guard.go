package engine

import (
	"sync"

	"github.com/notesmith/notesmith/internal/note"
)

// Guard serializes generation per note. A request for a note that is
// still being processed is refused outright, never queued.
type Guard struct {
	mu     sync.Mutex
	active map[note.Note]struct{}
}

// NewGuard creates an empty guard.
func NewGuard() *Guard {
	return &Guard{active: make(map[note.Note]struct{})}
}

// TryAcquire reserves the note for one generation pass. It reports false
// when a pass is already running for that note.
func (g *Guard) TryAcquire(n note.Note) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.active[n]; busy {
		return false
	}
	g.active[n] = struct{}{}
	return true
}

// Release frees the note for future passes.
func (g *Guard) Release(n note.Note) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, n)
}
