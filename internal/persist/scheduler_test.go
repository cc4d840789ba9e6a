package persist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DoyleJ11/board-sync/pkg/types"
)

type memStorage struct {
	mu    sync.Mutex
	saved []types.Board
	fail  bool
}

func (m *memStorage) Load(context.Context) ([]byte, error) { return nil, ErrNotFound }

func (m *memStorage) Save(_ context.Context, b types.Board) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("disk full")
	}
	m.saved = append(m.saved, b)
	return nil
}

func (m *memStorage) Close() error { return nil }

func (m *memStorage) snapshot() []types.Board {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.Board(nil), m.saved...)
}

// gatedStorage blocks every Save until release is closed.
type gatedStorage struct {
	memStorage
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedStorage() *gatedStorage {
	return &gatedStorage{started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedStorage) Save(ctx context.Context, b types.Board) error {
	g.once.Do(func() { close(g.started) })
	<-g.release
	return g.memStorage.Save(ctx, b)
}

func boardAt(ts string) types.Board {
	return types.Board{Title: "b", Sections: []types.Section{}, UpdatedAt: ts}
}

func TestScheduler_CoalescesBurstIntoLatest(t *testing.T) {
	mem := &memStorage{}
	s := NewScheduler(mem, 30*time.Millisecond, zap.NewNop())

	s.Schedule(boardAt("1"))
	s.Schedule(boardAt("2"))
	s.Schedule(boardAt("3"))

	require.Eventually(t, func() bool { return len(mem.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	saved := mem.snapshot()
	require.Len(t, saved, 1)
	assert.Equal(t, "3", saved[0].UpdatedAt)
	assert.EqualValues(t, 1, s.Saves())
}

func TestScheduler_QuietPeriodRestartsOnSchedule(t *testing.T) {
	mem := &memStorage{}
	s := NewScheduler(mem, 50*time.Millisecond, zap.NewNop())

	for i := 0; i < 4; i++ {
		s.Schedule(boardAt("x"))
		time.Sleep(20 * time.Millisecond)
	}
	assert.Empty(t, mem.snapshot(), "no write while updates keep arriving")

	require.Eventually(t, func() bool { return len(mem.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_FailureIsNonFatal(t *testing.T) {
	mem := &memStorage{fail: true}
	s := NewScheduler(mem, 10*time.Millisecond, zap.NewNop())

	s.Schedule(boardAt("1"))
	require.Eventually(t, func() bool { return s.Failures() == 1 }, time.Second, 5*time.Millisecond)

	mem.mu.Lock()
	mem.fail = false
	mem.mu.Unlock()

	s.Schedule(boardAt("2"))
	require.Eventually(t, func() bool { return len(mem.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "2", mem.snapshot()[0].UpdatedAt)
}

func TestScheduler_FlushWritesPendingImmediately(t *testing.T) {
	mem := &memStorage{}
	s := NewScheduler(mem, time.Hour, zap.NewNop())

	s.Schedule(boardAt("late"))
	require.NoError(t, s.Flush(context.Background()))

	saved := mem.snapshot()
	require.Len(t, saved, 1)
	assert.Equal(t, "late", saved[0].UpdatedAt)

	require.NoError(t, s.Flush(context.Background()), "nothing pending is not an error")
	assert.Len(t, mem.snapshot(), 1)
}

func TestScheduler_FlushWaitsForInFlightSave(t *testing.T) {
	g := newGatedStorage()
	s := NewScheduler(g, 10*time.Millisecond, zap.NewNop())

	s.Schedule(boardAt("1"))
	select {
	case <-g.started:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for save to start")
	}

	flushed := make(chan error, 1)
	go func() { flushed <- s.Flush(context.Background()) }()

	select {
	case <-flushed:
		t.Fatal("flush returned while a save was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(g.release)
	select {
	case err := <-flushed:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for flush")
	}
	saved := g.snapshot()
	require.Len(t, saved, 1)
	assert.Equal(t, "1", saved[0].UpdatedAt)
}

func TestScheduler_StalledSaveKeepsScheduleOrder(t *testing.T) {
	g := newGatedStorage()
	s := NewScheduler(g, 10*time.Millisecond, zap.NewNop())

	s.Schedule(boardAt("1"))
	select {
	case <-g.started:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for save to start")
	}

	// Both fire while "1" is stuck; only the latest may follow it.
	s.Schedule(boardAt("2"))
	time.Sleep(30 * time.Millisecond)
	s.Schedule(boardAt("3"))
	time.Sleep(30 * time.Millisecond)

	close(g.release)
	require.NoError(t, s.Flush(context.Background()))

	saved := g.snapshot()
	require.NotEmpty(t, saved)
	assert.Equal(t, "3", saved[len(saved)-1].UpdatedAt)
	for i := 1; i < len(saved); i++ {
		assert.Less(t, saved[i-1].UpdatedAt, saved[i].UpdatedAt)
	}
}

func TestScheduler_ScheduleCopiesBoard(t *testing.T) {
	mem := &memStorage{}
	s := NewScheduler(mem, time.Hour, zap.NewNop())

	b := types.Board{Sections: []types.Section{{ID: "s", Title: "before"}}}
	s.Schedule(b)
	b.Sections[0].Title = "after"

	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, "before", mem.snapshot()[0].Sections[0].Title)
}
