package main

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/board-sync/internal/board"
	"github.com/DoyleJ11/board-sync/internal/client"
	"github.com/DoyleJ11/board-sync/internal/httpapi"
	"github.com/DoyleJ11/board-sync/internal/hub"
	"github.com/DoyleJ11/board-sync/internal/state"
	"github.com/DoyleJ11/board-sync/internal/translate"
	"github.com/DoyleJ11/board-sync/pkg/types"
)

func TestWSURL(t *testing.T) {
	cases := map[string]string{
		"http://localhost:3000":   "ws://localhost:3000/ws",
		"https://board.example/":  "wss://board.example/ws",
		"ws://10.0.0.2:3000/base": "ws://10.0.0.2:3000/base/ws",
	}
	for in, want := range cases {
		got, err := wsURL(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := wsURL("ftp://x")
	assert.Error(t, err)
}

func TestRenderBoard(t *testing.T) {
	b := types.Board{Title: board.Title, Sections: []types.Section{{
		ID: "s1", Title: "Bad",
		Tasks: []types.Task{{ID: "t1", Text: "Legge flis", Done: true}, {ID: "t2", Text: "Fuge", Starred: true}},
	}}}
	out := renderBoard(b, nil, true)
	assert.Contains(t, out, board.Title)
	assert.Contains(t, out, "Bad")
	assert.Contains(t, out, "[x]")
	assert.Contains(t, out, "Fuge")
	assert.Contains(t, out, "t2")

	overlay := responseOverlay{Sections: []types.TranslationSection{{
		ID: "s1", Title: "Łazienka", Tasks: []types.TranslationTask{{ID: "t2", Text: "Fugowanie"}},
	}}}
	out = renderBoard(b, overlay, false)
	assert.Contains(t, out, "Łazienka")
	assert.Contains(t, out, "Fugowanie")
	assert.Contains(t, out, "Legge flis", "untranslated task keeps source text")
}

func TestWithBoard_EditRoundTrip(t *testing.T) {
	store := state.New(board.Default(), nil)
	h := hub.New(context.Background(), store, nil)
	srv := httptest.NewServer(httpapi.SetupRoutes(httpapi.Deps{Hub: h, State: store, Translator: translate.NewService(nil)}))
	defer func() {
		h.Send(hub.Shutdown{})
		<-h.Done()
		srv.Close()
	}()

	g := &globals{server: srv.URL}
	var sectionID string
	got, err := withBoard(context.Background(), g, func(ctx context.Context, rec *client.Reconciler) error {
		var err error
		sectionID, err = rec.AddSection(ctx, "  Stue ")
		return err
	})
	require.NoError(t, err)
	require.Len(t, got.Sections, 2)
	assert.Equal(t, sectionID, got.Sections[1].ID)
	assert.Equal(t, "Stue", store.Current().Sections[1].Title)

	current, err := withBoard(context.Background(), g, nil)
	require.NoError(t, err)
	assert.Equal(t, board.Signature(store.Current()), board.Signature(current))
	assert.True(t, strings.HasPrefix(sectionID, "section-"))
}
