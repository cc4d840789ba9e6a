package board

import (
	"encoding/json"
	"strconv"

	"github.com/DoyleJ11/board-sync/pkg/types"
)

// Result is either a canonical board or a rejection reason.
type Result struct {
	Board    types.Board
	Rejected bool
	Reason   string
}

func (r Result) OK() bool { return !r.Rejected }

func reject(err error) Result {
	return Result{Rejected: true, Reason: err.Error()}
}

// Normalizer turns arbitrary inbound payloads into canonical boards.
type Normalizer struct {
	Clock *Clock
	NewID func(prefix string) string
}

// New returns a Normalizer on the wall clock with uuid ids.
func New() *Normalizer {
	return &Normalizer{Clock: NewClock(nil), NewID: NewID}
}

var defaultNormalizer = New()

// Normalize runs the package-level normalizer.
func Normalize(raw []byte) Result { return defaultNormalizer.Normalize(raw) }

// NormalizeBoard re-normalizes an already typed board, e.g. one read back
// from storage.
func NormalizeBoard(b types.Board) Result { return defaultNormalizer.NormalizeBoard(b) }

func (n *Normalizer) NormalizeBoard(b types.Board) Result {
	raw, err := json.Marshal(b)
	if err != nil {
		return reject(err)
	}
	return n.Normalize(raw)
}

func (n *Normalizer) Normalize(raw []byte) Result {
	obj, err := Decode(raw)
	if err != nil {
		return reject(err)
	}

	sections := make([]types.Section, 0)
	sectionIDs := map[string]bool{}

	for _, rs := range ListValue(obj["sections"], MaxSections) {
		rawSection, ok := rs.(map[string]any)
		if !ok {
			continue
		}

		title := CollapseText(StringValue(rawSection["title"]), MaxSectionTitle)
		if title == "" {
			title = UntitledSection
		}

		tasks := make([]types.Task, 0)
		taskIDs := map[string]bool{}
		for _, rt := range ListValue(rawSection["tasks"], MaxTasksPerSection) {
			rawTask, ok := rt.(map[string]any)
			if !ok {
				continue
			}
			text := CollapseText(StringValue(rawTask["text"]), MaxTaskText)
			if text == "" {
				continue
			}
			tasks = append(tasks, types.Task{
				ID:      n.uniqueID(rawTask["id"], "task", taskIDs),
				Text:    text,
				Done:    truthy(rawTask["done"]),
				Starred: truthy(rawTask["starred"]),
			})
		}

		sections = append(sections, types.Section{
			ID:    n.uniqueID(rawSection["id"], "section", sectionIDs),
			Title: title,
			Tasks: tasks,
		})
	}

	return Result{Board: types.Board{
		Title:     Title,
		Sections:  sections,
		UpdatedAt: n.Clock.Stamp(),
	}}
}

// uniqueID keeps a non-empty string id unless it was already used in the
// same scope, otherwise mints a fresh one.
func (n *Normalizer) uniqueID(v any, prefix string, seen map[string]bool) string {
	id, ok := v.(string)
	if !ok || id == "" || seen[id] {
		id = n.NewID(prefix)
		for seen[id] {
			id = n.NewID(prefix)
		}
	}
	seen[id] = true
	return id
}

// ListValue returns v as a list clamped to max entries, or nil if v is not a list.
func ListValue(v any, max int) []any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	if len(list) > max {
		list = list[:max]
	}
	return list
}

// StringValue coerces a decoded JSON scalar to text the way a browser would
// with String(value || ""). Objects and arrays yield "".
func StringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return ""
	case json.Number:
		f, err := t.Float64()
		if err != nil || f == 0 {
			return ""
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return ""
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	default:
		return true
	}
}
