package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/board-sync/internal/board"
	"github.com/DoyleJ11/board-sync/internal/hub"
	"github.com/DoyleJ11/board-sync/internal/state"
	"github.com/DoyleJ11/board-sync/internal/translate"
	"github.com/DoyleJ11/board-sync/pkg/types"
)

type stubTranslator struct {
	resp types.TranslateResponse
	err  error
	got  []byte
}

func (s *stubTranslator) Translate(_ context.Context, raw []byte) (types.TranslateResponse, error) {
	s.got = raw
	return s.resp, s.err
}

func newServer(t *testing.T, tr Translator) (*httptest.Server, *state.Store) {
	t.Helper()
	store := state.New(board.Default(), nil)
	h := hub.New(context.Background(), store, nil)
	t.Cleanup(func() {
		h.Send(hub.Shutdown{})
		<-h.Done()
	})

	srv := httptest.NewServer(SetupRoutes(Deps{Hub: h, State: store, Translator: tr}))
	t.Cleanup(srv.Close)
	return srv, store
}

func postTranslate(t *testing.T, srv *httptest.Server, body string) (int, map[string]any) {
	t.Helper()
	res, err := http.Post(srv.URL+"/api/translate", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))

	var out map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return res.StatusCode, out
}

func TestHealth(t *testing.T) {
	srv, store := newServer(t, &stubTranslator{})

	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var h types.Health
	require.NoError(t, json.NewDecoder(res.Body).Decode(&h))
	assert.True(t, h.OK)
	assert.Equal(t, store.UpdatedAt(), h.UpdatedAt)
}

func TestTranslate_OK(t *testing.T) {
	stub := &stubTranslator{resp: types.TranslateResponse{Sections: []types.TranslationSection{{
		ID: "s1", Title: "Bathroom", Tasks: []types.TranslationTask{{ID: "t1", Text: "Lay tile"}},
	}}}}
	srv, _ := newServer(t, stub)

	status, body := postTranslate(t, srv, `{"sections":[{"id":"s1","title":"Bad","tasks":[{"id":"t1","text":"Legge flis"}]}]}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(stub.got), "Legge flis")

	sections := body["sections"].([]any)
	require.Len(t, sections, 1)
	assert.Equal(t, "Bathroom", sections[0].(map[string]any)["title"])
}

func TestTranslate_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"invalid", translate.ErrInvalidPayload, http.StatusBadRequest, "Invalid translation payload"},
		{"unavailable", translate.ErrUnavailable, http.StatusServiceUnavailable, "Translation failed"},
		{"upstream", &translate.UpstreamError{Status: 401, Err: errors.New("bad key")}, http.StatusBadGateway, "Translation failed"},
		{"bad output", translate.ErrBadModelOutput, http.StatusBadGateway, "Translation failed"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Translation failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newServer(t, &stubTranslator{err: tc.err})
			status, body := postTranslate(t, srv, `{"sections":[]}`)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.msg, body["error"])
		})
	}
}

func TestTranslate_BodyTooLarge(t *testing.T) {
	stub := &stubTranslator{}
	srv, _ := newServer(t, stub)

	status, body := postTranslate(t, srv, `{"pad":"`+strings.Repeat("x", maxBodyBytes)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, status)
	assert.Equal(t, "Payload too large", body["error"])
	assert.Nil(t, stub.got)
}

func TestTranslate_RealServiceRejectsNonObject(t *testing.T) {
	srv, _ := newServer(t, translate.NewService(nil))

	status, body := postTranslate(t, srv, `[1,2,3]`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid translation payload", body["error"])
}

func TestWebSocket_SyncAndUpdate(t *testing.T) {
	srv, store := newServer(t, &stubTranslator{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	a, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer a.Close(websocket.StatusNormalClosure, "")
	b, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer b.Close(websocket.StatusNormalClosure, "")

	var first types.ServerMessage
	require.NoError(t, wsjson.Read(ctx, a, &first))
	assert.Equal(t, types.MsgSync, first.Type)
	require.NotNil(t, first.Board)
	assert.Equal(t, board.Title, first.Board.Title)
	require.NoError(t, wsjson.Read(ctx, b, &first))

	// garbage is dropped without a reply
	require.NoError(t, a.Write(ctx, websocket.MessageText, []byte(`not json`)))
	require.NoError(t, wsjson.Write(ctx, a, map[string]any{"type": "update", "board": "nope"}))

	update := map[string]any{
		"type":  "update",
		"board": map[string]any{"sections": []any{map[string]any{"id": "s1", "title": "Bad", "tasks": []any{}}}},
	}
	require.NoError(t, wsjson.Write(ctx, a, update))

	for _, conn := range []*websocket.Conn{a, b} {
		var msg types.ServerMessage
		require.NoError(t, wsjson.Read(ctx, conn, &msg))
		require.NotNil(t, msg.Board)
		require.Len(t, msg.Board.Sections, 1)
		assert.Equal(t, "Bad", msg.Board.Sections[0].Title)
	}
	assert.Equal(t, "s1", store.Current().Sections[0].ID)
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := newServer(t, &stubTranslator{})
	res, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, res.Body)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
