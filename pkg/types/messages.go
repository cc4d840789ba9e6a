package types

import "encoding/json"

// Message types on the real-time channel.
const (
	// Server -> Client: full canonical board.
	MsgSync = "sync"
	// Client -> Server: candidate board, any shape, normalized server-side.
	MsgUpdate = "update"
)

// ClientMessage is what a session sends. Board is kept raw because the
// server accepts anything and lets the normalizer decide.
type ClientMessage struct {
	Type  string          `json:"type"`
	Board json.RawMessage `json:"board,omitempty"`
}

// ServerMessage is what the hub fans out.
type ServerMessage struct {
	Type  string `json:"type"` // "sync"
	Board *Board `json:"board,omitempty"`
}

// POST /api/translate
//
//	targetLanguage: optional, defaults to Polish
//	sections:       client-visible fields only, never done/starred
type TranslateRequest struct {
	TargetLanguage string               `json:"targetLanguage,omitempty"`
	Sections       []TranslationSection `json:"sections"`
}

type TranslationSection struct {
	ID    string            `json:"id"`
	Title string            `json:"title"`
	Tasks []TranslationTask `json:"tasks"`
}

type TranslationTask struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type TranslateResponse struct {
	Sections []TranslationSection `json:"sections"`
}

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Health is the body of GET /health.
type Health struct {
	OK        bool   `json:"ok"`
	UpdatedAt string `json:"updatedAt"`
}

// TranslationSource strips a board down to what the translator may see.
func TranslationSource(b Board, targetLanguage string) TranslateRequest {
	req := TranslateRequest{TargetLanguage: targetLanguage, Sections: make([]TranslationSection, 0, len(b.Sections))}
	for _, s := range b.Sections {
		ts := TranslationSection{ID: s.ID, Title: s.Title, Tasks: make([]TranslationTask, 0, len(s.Tasks))}
		for _, t := range s.Tasks {
			ts.Tasks = append(ts.Tasks, TranslationTask{ID: t.ID, Text: t.Text})
		}
		req.Sections = append(req.Sections, ts)
	}
	return req
}
