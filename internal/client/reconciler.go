// Package client keeps a local mirror of the shared board in step with the
// server and overlays it with cached translations.
package client

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/DoyleJ11/board-sync/internal/board"
	"github.com/DoyleJ11/board-sync/pkg/types"
)

var (
	ErrUnknownSection = errors.New("unknown section")
	ErrUnknownTask    = errors.New("unknown task")
	ErrEmptyText      = errors.New("task text is empty")
	ErrBoardFull      = errors.New("board limit reached")
)

// Sender pushes the whole mirror to the server as an update.
type Sender interface {
	Send(ctx context.Context, b types.Board) error
}

// Renderer is called with a copy of the mirror whenever its content changes.
type Renderer func(b types.Board)

// Reconciler owns the client's mirror. Local edits are applied to the mirror
// at once and sent in full; server syncs replace it unless their content is
// identical. There is no merge and no rollback.
type Reconciler struct {
	mu        sync.Mutex
	mirror    types.Board
	signature string
	synced    bool

	sender    Sender
	render    Renderer
	listeners []func(types.Board)

	clock *board.Clock
	newID func(prefix string) string
	log   *zap.Logger
}

type ReconcilerOption func(*Reconciler)

func WithClock(c *board.Clock) ReconcilerOption {
	return func(r *Reconciler) { r.clock = c }
}

func WithIDs(newID func(prefix string) string) ReconcilerOption {
	return func(r *Reconciler) { r.newID = newID }
}

func WithReconcilerLogger(l *zap.Logger) ReconcilerOption {
	return func(r *Reconciler) { r.log = l.Named("reconciler") }
}

func NewReconciler(sender Sender, render Renderer, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		mirror: board.Empty(),
		sender: sender,
		render: render,
		clock:  board.NewClock(nil),
		newID:  board.NewID,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.signature = board.Signature(r.mirror)
	return r
}

// OnContentChange registers fn to run after every render-worthy change,
// local or remote. fn must not call back into the Reconciler synchronously
// with edits.
func (r *Reconciler) OnContentChange(fn func(types.Board)) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// Board returns a copy of the mirror.
func (r *Reconciler) Board() types.Board {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mirror.Clone()
}

// Synced reports whether at least one server sync has been received.
func (r *Reconciler) Synced() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.synced
}

// HandleSync adopts a server board. When its content matches the mirror only
// updatedAt is taken and nothing is rendered; the return value reports
// whether the mirror content changed.
func (r *Reconciler) HandleSync(incoming types.Board) bool {
	next := r.lenient(incoming)
	sig := board.Signature(next)

	r.mu.Lock()
	r.synced = true
	if sig == r.signature {
		r.mirror.UpdatedAt = next.UpdatedAt
		r.mu.Unlock()
		return false
	}
	r.mirror = next
	r.signature = sig
	snapshot := next.Clone()
	listeners := append([]func(types.Board){}, r.listeners...)
	r.mu.Unlock()

	r.log.Debug("mirror replaced by sync", zap.String("updatedAt", snapshot.UpdatedAt))
	r.publish(snapshot, listeners)
	return true
}

// lenient repairs a sync the way a browser client would: ids are kept as
// given, text is trimmed, tasks with no text are dropped.
func (r *Reconciler) lenient(in types.Board) types.Board {
	out := types.Board{Title: board.Title, Sections: make([]types.Section, 0, len(in.Sections)), UpdatedAt: in.UpdatedAt}
	if out.UpdatedAt == "" {
		out.UpdatedAt = r.clock.Stamp()
	}
	for _, s := range in.Sections {
		sec := types.Section{ID: s.ID, Title: s.Title, Tasks: make([]types.Task, 0, len(s.Tasks))}
		if sec.ID == "" {
			sec.ID = r.newID("section")
		}
		if sec.Title == "" {
			sec.Title = board.UntitledSection
		}
		for _, t := range s.Tasks {
			text := strings.TrimSpace(t.Text)
			if text == "" {
				continue
			}
			if t.ID == "" {
				t.ID = r.newID("task")
			}
			t.Text = text
			sec.Tasks = append(sec.Tasks, t)
		}
		out.Sections = append(out.Sections, sec)
	}
	return out
}

// commit applies edit to the mirror, stamps it and sends the whole board.
// The mirror keeps the edit even if the send fails; the next sync decides.
func (r *Reconciler) commit(ctx context.Context, edit func(b *types.Board) error) error {
	r.mu.Lock()
	next := r.mirror.Clone()
	if err := edit(&next); err != nil {
		r.mu.Unlock()
		return err
	}
	next.UpdatedAt = r.clock.Stamp()
	r.mirror = next
	r.signature = board.Signature(next)
	snapshot := next.Clone()
	listeners := append([]func(types.Board){}, r.listeners...)

	// sent under the lock so updates leave in edit order
	var sendErr error
	if r.sender != nil {
		sendErr = r.sender.Send(ctx, snapshot)
	}
	r.mu.Unlock()

	if sendErr != nil {
		r.log.Warn("update not sent", zap.Error(sendErr))
	}
	r.publish(snapshot, listeners)
	return sendErr
}

func (r *Reconciler) publish(b types.Board, listeners []func(types.Board)) {
	if r.render != nil {
		r.render(b.Clone())
	}
	for _, fn := range listeners {
		fn(b.Clone())
	}
}

func (r *Reconciler) AddSection(ctx context.Context, title string) (string, error) {
	id := r.newID("section")
	err := r.commit(ctx, func(b *types.Board) error {
		if len(b.Sections) >= board.MaxSections {
			return ErrBoardFull
		}
		b.Sections = append(b.Sections, types.Section{ID: id, Title: sectionTitle(title), Tasks: []types.Task{}})
		return nil
	})
	return id, err
}

func (r *Reconciler) RemoveSection(ctx context.Context, sectionID string) error {
	return r.commit(ctx, func(b *types.Board) error {
		i := b.FindSection(sectionID)
		if i < 0 {
			return ErrUnknownSection
		}
		b.Sections = append(b.Sections[:i], b.Sections[i+1:]...)
		return nil
	})
}

func (r *Reconciler) RenameSection(ctx context.Context, sectionID, title string) error {
	return r.commit(ctx, func(b *types.Board) error {
		i := b.FindSection(sectionID)
		if i < 0 {
			return ErrUnknownSection
		}
		b.Sections[i].Title = sectionTitle(title)
		return nil
	})
}

// MoveSection moves the section at from to position to, clamped to the list.
func (r *Reconciler) MoveSection(ctx context.Context, from, to int) error {
	return r.commit(ctx, func(b *types.Board) error {
		if from < 0 || from >= len(b.Sections) {
			return ErrUnknownSection
		}
		b.Sections = moveItem(b.Sections, from, to)
		return nil
	})
}

func (r *Reconciler) AddTask(ctx context.Context, sectionID, text string) (string, error) {
	id := r.newID("task")
	text = board.CollapseText(text, board.MaxTaskText)
	if text == "" {
		return "", ErrEmptyText
	}
	err := r.commit(ctx, func(b *types.Board) error {
		i := b.FindSection(sectionID)
		if i < 0 {
			return ErrUnknownSection
		}
		if len(b.Sections[i].Tasks) >= board.MaxTasksPerSection {
			return ErrBoardFull
		}
		b.Sections[i].Tasks = append(b.Sections[i].Tasks, types.Task{ID: id, Text: text})
		return nil
	})
	return id, err
}

func (r *Reconciler) RemoveTask(ctx context.Context, sectionID, taskID string) error {
	return r.commit(ctx, func(b *types.Board) error {
		sec, j, err := findTask(b, sectionID, taskID)
		if err != nil {
			return err
		}
		sec.Tasks = append(sec.Tasks[:j], sec.Tasks[j+1:]...)
		return nil
	})
}

// EditTask replaces a task's text. Empty text removes the task; unchanged
// text is not sent.
func (r *Reconciler) EditTask(ctx context.Context, sectionID, taskID, text string) error {
	text = board.CollapseText(text, board.MaxTaskText)
	if text == "" {
		return r.RemoveTask(ctx, sectionID, taskID)
	}

	r.mu.Lock()
	unchanged := false
	if i := r.mirror.FindSection(sectionID); i >= 0 {
		if j := r.mirror.Sections[i].FindTask(taskID); j >= 0 {
			unchanged = r.mirror.Sections[i].Tasks[j].Text == text
		}
	}
	r.mu.Unlock()
	if unchanged {
		return nil
	}

	return r.commit(ctx, func(b *types.Board) error {
		sec, j, err := findTask(b, sectionID, taskID)
		if err != nil {
			return err
		}
		sec.Tasks[j].Text = text
		return nil
	})
}

func (r *Reconciler) ToggleDone(ctx context.Context, sectionID, taskID string) error {
	return r.commit(ctx, func(b *types.Board) error {
		sec, j, err := findTask(b, sectionID, taskID)
		if err != nil {
			return err
		}
		sec.Tasks[j].Done = !sec.Tasks[j].Done
		return nil
	})
}

func (r *Reconciler) ToggleStar(ctx context.Context, sectionID, taskID string) error {
	return r.commit(ctx, func(b *types.Board) error {
		sec, j, err := findTask(b, sectionID, taskID)
		if err != nil {
			return err
		}
		sec.Tasks[j].Starred = !sec.Tasks[j].Starred
		return nil
	})
}

// MoveTask moves a task to index within dstSectionID. The index is clamped
// to the destination list after the task has been taken out of its source.
func (r *Reconciler) MoveTask(ctx context.Context, srcSectionID, taskID, dstSectionID string, index int) error {
	return r.commit(ctx, func(b *types.Board) error {
		src, j, err := findTask(b, srcSectionID, taskID)
		if err != nil {
			return err
		}
		di := b.FindSection(dstSectionID)
		if di < 0 {
			return ErrUnknownSection
		}
		if dstSectionID != srcSectionID && len(b.Sections[di].Tasks) >= board.MaxTasksPerSection {
			return ErrBoardFull
		}

		task := src.Tasks[j]
		src.Tasks = append(src.Tasks[:j], src.Tasks[j+1:]...)

		dst := &b.Sections[di]
		index = max(0, min(index, len(dst.Tasks)))
		dst.Tasks = append(dst.Tasks, types.Task{})
		copy(dst.Tasks[index+1:], dst.Tasks[index:])
		dst.Tasks[index] = task
		return nil
	})
}

func findTask(b *types.Board, sectionID, taskID string) (*types.Section, int, error) {
	i := b.FindSection(sectionID)
	if i < 0 {
		return nil, -1, ErrUnknownSection
	}
	j := b.Sections[i].FindTask(taskID)
	if j < 0 {
		return nil, -1, ErrUnknownTask
	}
	return &b.Sections[i], j, nil
}

func sectionTitle(title string) string {
	if t := board.CollapseText(title, board.MaxSectionTitle); t != "" {
		return t
	}
	return board.UntitledSection
}

func moveItem[T any](list []T, from, to int) []T {
	out := make([]T, 0, len(list))
	item := list[from]
	out = append(out, list[:from]...)
	out = append(out, list[from+1:]...)
	to = max(0, min(to, len(out)))
	out = append(out[:to], append([]T{item}, out[to:]...)...)
	return out
}
