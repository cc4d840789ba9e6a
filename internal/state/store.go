// Package state owns the authoritative board.
package state

import (
	"sync"

	"go.uber.org/zap"

	"github.com/DoyleJ11/board-sync/internal/board"
	"github.com/DoyleJ11/board-sync/pkg/types"
)

// Persister receives every accepted board. Schedule must not block.
type Persister interface {
	Schedule(b types.Board)
}

// Store holds exactly one authoritative board. Readers always see a whole
// board, never a partially applied one.
type Store struct {
	mu         sync.RWMutex
	board      types.Board
	normalizer *board.Normalizer
	persister  Persister
	log        *zap.Logger
}

type Option func(*Store)

func WithNormalizer(n *board.Normalizer) Option {
	return func(s *Store) { s.normalizer = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l.Named("state") }
}

func New(initial types.Board, persister Persister, opts ...Option) *Store {
	s := &Store{
		board:      initial.Clone(),
		normalizer: board.New(),
		persister:  persister,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.normalizer.Clock.Observe(initial.UpdatedAt)
	return s
}

// Current returns a copy of the authoritative board.
func (s *Store) Current() types.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board.Clone()
}

func (s *Store) UpdatedAt() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board.UpdatedAt
}

// Apply normalizes raw and, if accepted, replaces the board and schedules a
// save. A rejected payload leaves the board untouched and returns false; the
// caller must not broadcast in that case.
func (s *Store) Apply(raw []byte) (types.Board, bool) {
	res := s.normalizer.Normalize(raw)
	if !res.OK() {
		s.log.Debug("update rejected", zap.String("reason", res.Reason))
		return types.Board{}, false
	}

	s.mu.Lock()
	s.board = res.Board
	s.mu.Unlock()

	if s.persister != nil {
		s.persister.Schedule(res.Board)
	}
	return res.Board.Clone(), true
}
