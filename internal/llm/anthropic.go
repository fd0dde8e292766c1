package llm

import (
	"context"
	"net/http"

	"familytrip/internal/domain/models"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
)

const anthropicDefaultModel = "claude-3-5-sonnet-20241022"

// AnthropicClient talks to the Messages API.
type AnthropicClient struct {
	client     anthropic.Client
	httpClient *http.Client
	Model      string
}

func NewAnthropicClient(apiKey, baseURL, model string) *AnthropicClient {
	hc := streamingHTTPClient()
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(hc),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = anthropicDefaultModel
	}
	return &AnthropicClient{client: anthropic.NewClient(opts...), httpClient: hc, Model: model}
}

func (c *AnthropicClient) Name() string { return "anthropic" }

func (c *AnthropicClient) Stream(ctx context.Context, req Request) (Stream, error) {
	msgs := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == models.RoleAssistant {
			msgs = append(msgs, anthropic.NewAssistantMessage(block))
		} else {
			msgs = append(msgs, anthropic.NewUserMessage(block))
		}
	}

	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.Model),
		MaxTokens:   maxTokens,
		Messages:    msgs,
		Temperature: anthropic.Float(req.Temperature),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	// As with OpenAI, request errors surface on the first Next.
	s := c.client.Messages.NewStreaming(ctx, params)
	return &anthropicStream{s: s, provider: c.Name()}, nil
}

type anthropicStream struct {
	s        *ssestream.Stream[anthropic.MessageStreamEventUnion]
	provider string
	text     string
}

func (a *anthropicStream) Next() bool {
	for a.s.Next() {
		ev, ok := a.s.Current().AsAny().(anthropic.ContentBlockDeltaEvent)
		if !ok {
			continue
		}
		if delta, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
			a.text = delta.Text
			return true
		}
	}
	return false
}

func (a *anthropicStream) Text() string { return a.text }

func (a *anthropicStream) Err() error {
	if err := a.s.Err(); err != nil {
		return upstream(a.provider, statusOf(err), err)
	}
	return nil
}

func (a *anthropicStream) Close() error { return a.s.Close() }

var _ Provider = (*AnthropicClient)(nil)
