// Package hub fans the canonical board out to every connected session and
// funnels their updates into the state store one at a time.
package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/DoyleJ11/board-sync/pkg/types"
)

type Msg interface{ isHubMsg() }

// Update carries a candidate board from a session. Payload is forwarded
// untouched; the store decides whether it is acceptable.
type Update struct {
	ClientID string
	Payload  []byte
}

func (Update) isHubMsg() {}

type Join struct {
	ClientID string
	Outbox   chan types.Board // where this session receives sync boards
}

func (Join) isHubMsg() {}

type Leave struct{ ClientID string }

func (Leave) isHubMsg() {}

type Shutdown struct{}

func (Shutdown) isHubMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isHubMsg() {}

type View struct {
	Version    int
	NumClients int
	Board      types.Board
}

// Applier is the slice of the state store the hub drives.
type Applier interface {
	Current() types.Board
	Apply(raw []byte) (types.Board, bool)
}

type Hub struct {
	inbox   chan Msg
	store   Applier
	version int
	clients map[string]chan types.Board
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(parent context.Context, store Applier, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if log == nil {
		log = zap.NewNop()
	}

	h := &Hub{
		inbox:   make(chan Msg, 64),
		store:   store,
		clients: make(map[string]chan types.Board),
		log:     log.Named("hub"),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go h.loop()
	return h
}

// Every message is handled to completion before the next one is read, so
// Apply calls never interleave and broadcasts leave in apply order.
func (h *Hub) loop() {
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Join:
				h.clients[msg.ClientID] = msg.Outbox
				h.deliver(msg.ClientID, msg.Outbox, h.store.Current())
				h.log.Debug("session joined", zap.String("client", msg.ClientID), zap.Int("sessions", len(h.clients)))

			case Leave:
				if ch, ok := h.clients[msg.ClientID]; ok {
					close(ch)
					delete(h.clients, msg.ClientID)
				}

			case Update:
				next, ok := h.store.Apply(msg.Payload)
				if !ok {
					// malformed input is common; drop without reply
					break
				}
				h.version++
				h.broadcast(next)

			case GetState:
				msg.Reply <- View{
					Version:    h.version,
					NumClients: len(h.clients),
					Board:      h.store.Current(),
				}

			case Shutdown:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for id, ch := range h.clients {
		close(ch) // no more boards for this session
		delete(h.clients, id)
	}
	h.cancel()
}

func (h *Hub) broadcast(b types.Board) {
	for id, ch := range h.clients {
		h.deliver(id, ch, b.Clone())
	}
}

func (h *Hub) deliver(id string, ch chan types.Board, b types.Board) {
	select {
	case ch <- b:
	default:
		// Session is slow/full - drop it. It resyncs on reconnect.
		h.log.Warn("dropping slow session", zap.String("client", id))
		close(ch)
		delete(h.clients, id)
	}
}

// Inbox exposes the raw inbox so tests can drive the hub directly.
func (h *Hub) Inbox() chan<- Msg { return h.inbox }

// Send delivers m unless the hub has stopped. It reports whether m was queued.
func (h *Hub) Send(m Msg) bool {
	select {
	case <-h.ctx.Done():
		return false
	default:
	}
	select {
	case h.inbox <- m:
		return true
	case <-h.ctx.Done():
		return false
	}
}

// Done is closed once the loop has exited and every outbox is closed.
func (h *Hub) Done() <-chan struct{} { return h.done }
