package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/board-sync/internal/hub"
	"github.com/DoyleJ11/board-sync/pkg/types"
)

const (
	writeTimeout = 3 * time.Second
	readLimit    = 1 << 20 // same cap as the HTTP JSON body
	outboxSize   = 8
)

type Options struct {
	// OriginPatterns loosens the same-origin check, e.g. "localhost:*" in dev.
	OriginPatterns []string
}

func Handler(h *hub.Hub, log *zap.Logger, opts Options) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("ws")
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			log.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")
		conn.SetReadLimit(readLimit)

		out := make(chan types.Board, outboxSize)
		clientID := uuid.NewString()

		if !h.Send(hub.Join{ClientID: clientID, Outbox: out}) {
			conn.Close(websocket.StatusGoingAway, "shutting down")
			return
		}
		defer h.Send(hub.Leave{ClientID: clientID})

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for b := range out {
				payload, err := json.Marshal(types.ServerMessage{Type: types.MsgSync, Board: &b})
				if err != nil {
					log.Error("marshal sync", zap.Error(err))
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				err = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
				if err != nil {
					conn.Close(websocket.StatusInternalError, "write failed")
					return
				}
			}
			// The hub closed our outbox: dropped as slow, or shutting down.
			conn.Close(websocket.StatusTryAgainLater, "resync")
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("session read ended", zap.String("client", clientID), zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil || cm.Type != types.MsgUpdate || len(cm.Board) == 0 {
				// unknown or malformed frames are dropped like rejected boards
				continue
			}
			if !h.Send(hub.Update{ClientID: clientID, Payload: cm.Board}) {
				return
			}
		}
	}
}
