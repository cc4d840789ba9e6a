package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/board-sync/pkg/types"
)

func TestHTTPTranslator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/translate", r.URL.Path)
		var req types.TranslateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.TargetLanguage == "fail" {
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: "Translation failed"})
			return
		}
		_ = json.NewEncoder(w).Encode(translatedFor(req, "PL "))
	}))
	defer srv.Close()

	tr := NewHTTPTranslator(srv.URL + "/")
	req := types.TranslationSource(sampleBoard(), "Polish")

	resp, err := tr.Translate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "PL Bad", resp.Sections[0].Title)

	req.TargetLanguage = "fail"
	_, err = tr.Translate(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
