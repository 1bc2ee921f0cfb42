package monitor

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// StaticPreference is a motion preference fixed by configuration. It is also
// the fallback when no desktop portal is reachable.
type StaticPreference struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	reduced bool
	changes chan bool
}

// NewStaticPreference creates a preference holding reduced
func NewStaticPreference(logger *zap.Logger, reduced bool) *StaticPreference {
	return &StaticPreference{
		logger:  logger,
		reduced: reduced,
		changes: make(chan bool, 1),
	}
}

// Start is a no-op
func (s *StaticPreference) Start(ctx context.Context) error {
	s.logger.Info("Using static motion preference", zap.Bool("reducedMotion", s.ReducedMotion()))
	return nil
}

// Stop closes Changes
func (s *StaticPreference) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.changes != nil {
		close(s.changes)
		s.changes = nil
	}
	return nil
}

// ReducedMotion returns the held value
func (s *StaticPreference) ReducedMotion() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reduced
}

// Changes emits values passed to Set
func (s *StaticPreference) Changes() <-chan bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.changes
}

// Set changes the held value. A pending, unread change is replaced.
func (s *StaticPreference) Set(reduced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reduced == reduced || s.changes == nil {
		s.reduced = reduced
		return
	}
	s.reduced = reduced

	select {
	case <-s.changes:
	default:
	}
	s.changes <- reduced
}
