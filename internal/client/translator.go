package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/DoyleJ11/board-sync/pkg/types"
)

// HTTPTranslator calls the server's /api/translate endpoint.
type HTTPTranslator struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPTranslator(baseURL string) *HTTPTranslator {
	return &HTTPTranslator{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (t *HTTPTranslator) Translate(ctx context.Context, req types.TranslateRequest) (types.TranslateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return types.TranslateResponse{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL+"/api/translate", bytes.NewReader(body))
	if err != nil {
		return types.TranslateResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := t.Client.Do(httpReq)
	if err != nil {
		return types.TranslateResponse{}, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var e types.ErrorResponse
		_ = json.NewDecoder(io.LimitReader(res.Body, 4096)).Decode(&e)
		return types.TranslateResponse{}, fmt.Errorf("translation request failed: %d %s", res.StatusCode, e.Error)
	}

	var out types.TranslateResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return types.TranslateResponse{}, fmt.Errorf("decode translation: %w", err)
	}
	return out, nil
}
