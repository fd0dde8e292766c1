package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	intconfig "familytrip/internal/config"
	"familytrip/internal/domain"
	"familytrip/internal/domain/models"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
)

const responseHeaderTimeout = 60 * time.Second

// Request is one streaming generation call.
type Request struct {
	System      string
	Messages    []models.ChatMessage
	MaxTokens   int
	Temperature float64
}

// Stream yields text deltas until Next returns false; Err then reports why.
type Stream interface {
	Next() bool
	Text() string
	Err() error
	Close() error
}

// Provider is a hosted model API with streaming text generation.
type Provider interface {
	Name() string
	Stream(ctx context.Context, req Request) (Stream, error)
}

// New builds the provider selected in env.
func New(env intconfig.Env) (Provider, error) {
	if env.LLMAPIKey == "" {
		return nil, fmt.Errorf("no API key configured for %s", env.LLMProvider)
	}
	switch env.LLMProvider {
	case intconfig.ProviderAnthropic:
		return NewAnthropicClient(env.LLMAPIKey, env.LLMBaseURL, env.LLMModel), nil
	case intconfig.ProviderOpenAI:
		return NewOpenAIClient(env.LLMAPIKey, env.LLMBaseURL, env.LLMModel), nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", env.LLMProvider)
	}
}

// Unavailable is used when no provider could be configured; every call fails.
type Unavailable struct {
	Reason error
}

func (u Unavailable) Name() string { return "unavailable" }

func (u Unavailable) Stream(context.Context, Request) (Stream, error) {
	return nil, domain.UpstreamError{Provider: u.Name(), Err: u.Reason}
}

// Prefetch pulls the first delta so that a failing upstream is reported before
// any response byte is written. The returned stream replays that delta.
func Prefetch(s Stream) (Stream, error) {
	if s.Next() {
		return &prefetched{Stream: s, first: s.Text(), pending: true}, nil
	}
	if err := s.Err(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return &prefetched{Stream: s}, nil
}

type prefetched struct {
	Stream
	first   string
	pending bool
	current string
}

func (p *prefetched) Next() bool {
	if p.pending {
		p.pending = false
		p.current = p.first
		return true
	}
	if p.Stream.Next() {
		p.current = p.Stream.Text()
		return true
	}
	return false
}

func (p *prefetched) Text() string { return p.current }

// upstream wraps err as a domain.UpstreamError unless it already is one.
func upstream(provider string, status int, err error) error {
	var ue domain.UpstreamError
	if errors.As(err, &ue) {
		return err
	}
	return domain.UpstreamError{Provider: provider, Status: status, Err: err}
}

// streamingHTTPClient bounds the wait for response headers only. A body may
// stream for as long as the request context allows.
func streamingHTTPClient() *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.ResponseHeaderTimeout = responseHeaderTimeout
	return &http.Client{Transport: tr}
}

// statusOf extracts the HTTP status from an SDK API error, or 0.
func statusOf(err error) int {
	var ae *anthropic.Error
	if errors.As(err, &ae) {
		return ae.StatusCode
	}
	var oe *openai.Error
	if errors.As(err, &oe) {
		return oe.StatusCode
	}
	return 0
}
