// Package translate overlays a board's text with a model translation while
// keeping every id, count and position of the source.
package translate

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/DoyleJ11/board-sync/internal/board"
	"github.com/DoyleJ11/board-sync/pkg/types"
)

const tracerName = "github.com/DoyleJ11/board-sync/internal/translate"

// Model is the external language model: prompt in, raw text out.
type Model interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Service is stateless apart from its collaborators, so concurrent
// Translate calls are independent.
type Service struct {
	model  Model
	log    *zap.Logger
	tracer trace.Tracer
	newID  func(prefix string) string
}

type Option func(*Service)

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) { s.tracer = tp.Tracer(tracerName) }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l.Named("translate") }
}

// NewService builds a Service. A nil model means no credential is
// configured and every non-empty request fails with ErrUnavailable.
func NewService(model Model, opts ...Option) *Service {
	s := &Service{
		model:  model,
		log:    zap.NewNop(),
		tracer: otel.Tracer(tracerName),
		newID:  board.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Translate sanitizes raw, asks the model, and maps the answer back onto
// the sanitized request.
func (s *Service) Translate(ctx context.Context, raw []byte) (types.TranslateResponse, error) {
	req, err := s.Sanitize(raw)
	if err != nil {
		return types.TranslateResponse{}, err
	}
	return s.TranslateRequest(ctx, req)
}

// Sanitize applies the board limits to a translation payload: at most 100
// sections and 500 tasks each, titles and text collapsed and clamped, tasks
// with empty text dropped, missing ids filled in.
func (s *Service) Sanitize(raw []byte) (types.TranslateRequest, error) {
	obj, err := board.Decode(raw)
	if err != nil {
		return types.TranslateRequest{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	req := types.TranslateRequest{
		TargetLanguage: ResolveLanguage(board.StringValue(obj["targetLanguage"])),
		Sections:       make([]types.TranslationSection, 0),
	}

	for _, rs := range board.ListValue(obj["sections"], board.MaxSections) {
		rawSection, ok := rs.(map[string]any)
		if !ok {
			continue
		}
		section := types.TranslationSection{
			ID:    s.idOr(rawSection["id"], "section"),
			Title: board.CollapseText(board.StringValue(rawSection["title"]), board.MaxSectionTitle),
			Tasks: make([]types.TranslationTask, 0),
		}
		if section.Title == "" {
			section.Title = board.UntitledSection
		}

		for _, rt := range board.ListValue(rawSection["tasks"], board.MaxTasksPerSection) {
			rawTask, ok := rt.(map[string]any)
			if !ok {
				continue
			}
			text := board.CollapseText(board.StringValue(rawTask["text"]), board.MaxTaskText)
			if text == "" {
				continue
			}
			section.Tasks = append(section.Tasks, types.TranslationTask{
				ID:   s.idOr(rawTask["id"], "task"),
				Text: text,
			})
		}
		req.Sections = append(req.Sections, section)
	}
	return req, nil
}

func (s *Service) idOr(v any, prefix string) string {
	if id, ok := v.(string); ok && id != "" {
		return id
	}
	return s.newID(prefix)
}

// TranslateRequest translates an already sanitized request.
func (s *Service) TranslateRequest(ctx context.Context, req types.TranslateRequest) (resp types.TranslateResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "translate.Translate", trace.WithAttributes(
		attribute.String("translate.language", req.TargetLanguage),
		attribute.Int("translate.sections", len(req.Sections)),
		attribute.Int("translate.tasks", countTasks(req)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "translation failed")
		}
		span.End()
	}()

	if len(req.Sections) == 0 {
		return types.TranslateResponse{Sections: []types.TranslationSection{}}, nil
	}
	if s.model == nil {
		return types.TranslateResponse{}, ErrUnavailable
	}

	prompt, err := BuildPrompt(req)
	if err != nil {
		return types.TranslateResponse{}, fmt.Errorf("build prompt: %w", err)
	}

	out, err := s.model.Complete(ctx, prompt)
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			s.log.Warn("model call failed", zap.Int("status", upstream.Status), zap.Error(err))
		}
		return types.TranslateResponse{}, err
	}

	parsed, err := ExtractJSON(out)
	if err != nil {
		s.log.Warn("model returned no usable JSON", zap.Int("outputLength", len(out)))
		return types.TranslateResponse{}, err
	}
	return MapBack(parsed, req.Sections), nil
}

// MapBack projects the model's answer onto the source sections. Only source
// ids are emitted; a missing or blank translation keeps the source text.
func MapBack(parsed map[string]any, source []types.TranslationSection) types.TranslateResponse {
	type translated struct {
		title string
		tasks map[string]string
	}
	byID := map[string]translated{}

	for _, rs := range anyList(parsed["sections"]) {
		sec, ok := rs.(map[string]any)
		if !ok {
			continue
		}
		id, ok := sec["id"].(string)
		if !ok {
			continue
		}
		tasks := map[string]string{}
		for _, rt := range anyList(sec["tasks"]) {
			task, ok := rt.(map[string]any)
			if !ok {
				continue
			}
			taskID, ok := task["id"].(string)
			if !ok {
				continue
			}
			tasks[taskID] = board.CollapseText(textOf(task["text"]), board.MaxTaskText)
		}
		byID[id] = translated{
			title: board.CollapseText(textOf(sec["title"]), board.MaxSectionTitle),
			tasks: tasks,
		}
	}

	out := types.TranslateResponse{Sections: make([]types.TranslationSection, 0, len(source))}
	for _, src := range source {
		tr, found := byID[src.ID]
		section := types.TranslationSection{ID: src.ID, Title: src.Title, Tasks: make([]types.TranslationTask, 0, len(src.Tasks))}
		if found && tr.title != "" {
			section.Title = tr.title
		}
		for _, task := range src.Tasks {
			text := task.Text
			if found && tr.tasks[task.ID] != "" {
				text = tr.tasks[task.ID]
			}
			section.Tasks = append(section.Tasks, types.TranslationTask{ID: task.ID, Text: text})
		}
		out.Sections = append(out.Sections, section)
	}
	return out
}

func anyList(v any) []any {
	list, _ := v.([]any)
	return list
}

// textOf accepts only strings; encoding/json decodes numbers as float64,
// which StringValue does not coerce.
func textOf(v any) string {
	s, _ := v.(string)
	return s
}

func countTasks(req types.TranslateRequest) int {
	n := 0
	for _, s := range req.Sections {
		n += len(s.Tasks)
	}
	return n
}
