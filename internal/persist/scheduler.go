package persist

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/board-sync/internal/debounce"
	"github.com/DoyleJ11/board-sync/pkg/types"
)

const (
	DefaultQuietPeriod  = 150 * time.Millisecond
	defaultWriteTimeout = 10 * time.Second
)

// Scheduler is a write-behind cache in front of a Storage. Rapid Schedule
// calls collapse into one write of the latest board once the quiet period
// passes. There is no queue: at most one board is pending.
type Scheduler struct {
	storage Storage
	log     *zap.Logger
	timer   *debounce.Debouncer

	mu      sync.Mutex
	pending *types.Board

	// held across take and Save so writes land in Schedule order and Flush
	// waits out a save the timer already started
	writeMu sync.Mutex

	saves    atomic.Int64
	failures atomic.Int64
}

func NewScheduler(storage Storage, quiet time.Duration, log *zap.Logger) *Scheduler {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		storage: storage,
		log:     log.Named("persist"),
		timer:   debounce.New(quiet),
	}
}

// Schedule records b as the board to write and restarts the quiet period.
// It never blocks on storage.
func (s *Scheduler) Schedule(b types.Board) {
	cp := b.Clone()
	s.mu.Lock()
	s.pending = &cp
	s.mu.Unlock()
	s.timer.Trigger(s.fire)
}

func (s *Scheduler) fire() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	b, ok := s.take()
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultWriteTimeout)
	defer cancel()
	_ = s.write(ctx, b)
}

// Flush drops the timer and writes the pending board now, after any save
// already in progress. Used on shutdown.
func (s *Scheduler) Flush(ctx context.Context) error {
	s.timer.Cancel()
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	b, ok := s.take()
	if !ok {
		return nil
	}
	return s.write(ctx, b)
}

func (s *Scheduler) take() (types.Board, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return types.Board{}, false
	}
	b := *s.pending
	s.pending = nil
	return b, true
}

// write failures are logged only; the in-memory board stays authoritative
// and the next scheduled write gets another chance. Callers hold writeMu.
func (s *Scheduler) write(ctx context.Context, b types.Board) error {
	if err := s.storage.Save(ctx, b); err != nil {
		s.failures.Add(1)
		s.log.Error("failed to save board", zap.Error(err), zap.String("updatedAt", b.UpdatedAt))
		return err
	}
	s.saves.Add(1)
	s.log.Debug("board saved", zap.String("updatedAt", b.UpdatedAt))
	return nil
}

func (s *Scheduler) Saves() int64    { return s.saves.Load() }
func (s *Scheduler) Failures() int64 { return s.failures.Load() }
