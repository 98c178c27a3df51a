package report

import (
	"context"
	"errors"
	"sync"
)

// ErrNotReady is returned by Snapshot.Reports before the first Refresh.
var ErrNotReady = errors.New("report: reports have not been computed yet")

// Snapshot holds one computed Set and serves it until the next Refresh.
// Readers never see a partially built Set.
type Snapshot struct {
	engine *Engine
	mu     sync.RWMutex
	set    *Set
}

func NewSnapshot(engine *Engine) *Snapshot {
	return &Snapshot{engine: engine}
}

// Refresh rebuilds the report set. On failure the previous set stays in place.
func (s *Snapshot) Refresh(ctx context.Context) error {
	set, err := s.engine.Build(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.set = set
	s.mu.Unlock()
	return nil
}

// Reports returns the current set.
func (s *Snapshot) Reports(ctx context.Context) (*Set, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.set == nil {
		return nil, ErrNotReady
	}
	return s.set, nil
}
