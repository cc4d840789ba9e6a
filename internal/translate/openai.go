package translate

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

const (
	DefaultModel    = "gpt-4o-mini"
	maxOutputTokens = 1200
)

// OpenAIModel completes prompts through the OpenAI Responses API.
type OpenAIModel struct {
	client openai.Client
	model  string
}

// NewOpenAIModel builds a client for apiKey. Extra options are appended
// after the defaults, so tests can point it at a local server.
func NewOpenAIModel(apiKey, model string, opts ...option.RequestOption) *OpenAIModel {
	if model == "" {
		model = DefaultModel
	}
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	return &OpenAIModel{
		client: openai.NewClient(append(base, opts...)...),
		model:  model,
	}
}

func (m *OpenAIModel) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := m.client.Responses.New(ctx, responses.ResponseNewParams{
		Model:           shared.ResponsesModel(m.model),
		Input:           responses.ResponseNewParamsInputUnion{OfString: openai.String(prompt)},
		MaxOutputTokens: openai.Int(maxOutputTokens),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &UpstreamError{Status: apiErr.StatusCode, Err: err}
		}
		return "", &UpstreamError{Err: err}
	}

	var text string
	for _, item := range resp.Output {
		for _, c := range item.Content {
			text += c.Text
		}
	}
	return text, nil
}
