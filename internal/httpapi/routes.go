package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/board-sync/internal/hub"
	"github.com/DoyleJ11/board-sync/internal/ws"
	"github.com/DoyleJ11/board-sync/pkg/types"
)

const maxBodyBytes = 1 << 20

// Translator is the translation service as seen by the HTTP layer.
type Translator interface {
	Translate(ctx context.Context, raw []byte) (types.TranslateResponse, error)
}

// Clock reports the canonical board's updatedAt for /health.
type Clock interface {
	UpdatedAt() string
}

type Deps struct {
	Hub        *hub.Hub
	State      Clock
	Translator Translator
	Log        *zap.Logger
	WS         ws.Options
}

func SetupRoutes(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log.Named("http")))
	r.Use(middleware.Recoverer)

	r.Get("/health", Health(d.State))
	r.With(middleware.RequestSize(maxBodyBytes)).Post("/api/translate", Translate(d.Translator, log))
	r.Get("/ws", ws.Handler(d.Hub, log, d.WS))
	return r
}
