package board

import (
	"encoding/json"

	"github.com/DoyleJ11/board-sync/pkg/types"
)

// Signature is the content signature over (title, sections). updatedAt is
// excluded so a re-broadcast of unchanged content compares equal.
func Signature(b types.Board) string {
	payload := struct {
		Title    string          `json:"title"`
		Sections []types.Section `json:"sections"`
	}{Title: b.Title, Sections: nonNilSections(b.Sections)}
	out, _ := json.Marshal(payload)
	return string(out)
}

// TranslationSignature covers only what a translation depends on:
// (sectionId, title, taskId, text). Flags and timestamps are ignored.
func TranslationSignature(sections []types.Section) string {
	src := types.TranslationSource(types.Board{Sections: sections}, "")
	out, _ := json.Marshal(src.Sections)
	return string(out)
}

func nonNilSections(in []types.Section) []types.Section {
	out := make([]types.Section, len(in))
	for i, s := range in {
		if s.Tasks == nil {
			s.Tasks = []types.Task{}
		}
		out[i] = s
	}
	return out
}
