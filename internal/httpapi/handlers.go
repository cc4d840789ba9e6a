package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/board-sync/internal/translate"
	"github.com/DoyleJ11/board-sync/pkg/types"
)

const (
	msgInvalidPayload = "Invalid translation payload"
	msgTranslateFail  = "Translation failed"
	msgTooLarge       = "Payload too large"
)

func Translate(t Translator, log *zap.Logger) http.HandlerFunc {
	log = log.Named("translate")
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, types.ErrorResponse{Error: msgTooLarge})
				return
			}
			writeJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: msgInvalidPayload})
			return
		}

		resp, err := t.Translate(r.Context(), body)
		if err != nil {
			status := statusFor(err)
			if status == http.StatusBadRequest {
				writeJSON(w, status, types.ErrorResponse{Error: msgInvalidPayload})
				return
			}
			log.Warn("translation failed",
				zap.Int("status", status),
				zap.String("requestId", middleware.GetReqID(r.Context())),
				zap.Error(err))
			writeJSON(w, status, types.ErrorResponse{Error: msgTranslateFail})
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func statusFor(err error) int {
	var upstream *translate.UpstreamError
	switch {
	case errors.Is(err, translate.ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, translate.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, translate.ErrBadModelOutput), errors.As(err, &upstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func Health(c Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.Health{OK: true, UpdatedAt: c.UpdatedAt()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("took", time.Since(start)),
				zap.String("requestId", middleware.GetReqID(r.Context())))
		})
	}
}
