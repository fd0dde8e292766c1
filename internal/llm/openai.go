package llm

import (
	"context"

	"familytrip/internal/domain/models"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
)

const openAIDefaultModel = "gpt-4o-mini"

// OpenAIClient talks to the Chat Completions API or any compatible endpoint.
type OpenAIClient struct {
	client openai.Client
	Model  string
}

func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(streamingHTTPClient()),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = openAIDefaultModel
	}
	return &OpenAIClient{client: openai.NewClient(opts...), Model: model}
}

func (c *OpenAIClient) Name() string { return "openai" }

func (c *OpenAIClient) Stream(ctx context.Context, req Request) (Stream, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case models.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.Model),
		Messages:    msgs,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	// Request errors surface on the first Next; Prefetch catches them.
	s := c.client.Chat.Completions.NewStreaming(ctx, params)
	return &openAIStream{s: s, provider: c.Name()}, nil
}

type openAIStream struct {
	s        *ssestream.Stream[openai.ChatCompletionChunk]
	provider string
	text     string
}

func (o *openAIStream) Next() bool {
	for o.s.Next() {
		chunk := o.s.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			o.text = delta
			return true
		}
	}
	return false
}

func (o *openAIStream) Text() string { return o.text }

func (o *openAIStream) Err() error {
	if err := o.s.Err(); err != nil {
		return upstream(o.provider, statusOf(err), err)
	}
	return nil
}

func (o *openAIStream) Close() error { return o.s.Close() }

var _ Provider = (*OpenAIClient)(nil)
