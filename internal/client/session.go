package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/DoyleJ11/board-sync/pkg/types"
)

var ErrNotConnected = errors.New("not connected")

type Status int

const (
	Connecting Status = iota
	Connected
	Reconnecting
)

func (s Status) String() string {
	switch s {
	case Connected:
		return "Up to date"
	case Reconnecting:
		return "Reconnecting..."
	default:
		return "Connecting..."
	}
}

const (
	minBackoff   = 250 * time.Millisecond
	maxBackoff   = 5 * time.Second
	writeTimeout = 3 * time.Second
)

// Session is one client's real-time connection. It redials with exponential
// backoff until its context ends.
type Session struct {
	url      string
	log      *zap.Logger
	onStatus func(Status)

	mu     sync.Mutex
	conn   *websocket.Conn
	status Status
}

type SessionOption func(*Session)

func WithStatus(fn func(Status)) SessionOption {
	return func(s *Session) { s.onStatus = fn }
}

func WithSessionLogger(l *zap.Logger) SessionOption {
	return func(s *Session) { s.log = l.Named("session") }
}

// NewSession prepares a session for the websocket endpoint at url,
// e.g. ws://localhost:3000/ws.
func NewSession(url string, opts ...SessionOption) *Session {
	s := &Session{url: url, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) setStatus(st Status) {
	s.mu.Lock()
	changed := s.status != st
	s.status = st
	s.mu.Unlock()
	if changed && s.onStatus != nil {
		s.onStatus(st)
	}
}

// Run connects and feeds every sync to onSync until ctx is done. The status
// only becomes Connected once a sync has arrived on the current connection.
func (s *Session) Run(ctx context.Context, onSync func(types.Board)) error {
	backoff := minBackoff
	for {
		err := s.runOnce(ctx, onSync, func() { backoff = minBackoff })
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.setStatus(Reconnecting)
		s.log.Debug("connection lost", zap.Error(err), zap.Duration("retryIn", backoff))

		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

func (s *Session) runOnce(ctx context.Context, onSync func(types.Board), synced func()) error {
	conn, _, err := websocket.Dial(ctx, s.url, nil)
	if err != nil {
		return err
	}
	conn.SetReadLimit(4 << 20)

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var msg types.ServerMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return err
		}
		if msg.Type != types.MsgSync || msg.Board == nil {
			continue
		}
		synced()
		s.setStatus(Connected)
		onSync(*msg.Board)
	}
}

// Send writes b as an update frame. It fails fast with ErrNotConnected
// while the session is between connections.
func (s *Session) Send(ctx context.Context, b types.Board) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	payload := struct {
		Type  string      `json:"type"`
		Board types.Board `json:"board"`
	}{Type: types.MsgUpdate, Board: b}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, payload)
}
