package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"familytrip/internal/domain"
	"familytrip/internal/domain/models"
	"familytrip/internal/llm"
	"familytrip/internal/prompts"
	"familytrip/internal/telemetry"
	"familytrip/internal/utils"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.7
)

// ChatService composes prompts and opens the upstream stream. A nil Temperature
// means DefaultTemperature; zero is a valid setting.
type ChatService struct {
	Provider    llm.Provider
	Trips       TripService
	MaxTokens   int
	Temperature *float64
	RequestID   string
}

// ChatStream is an open upstream stream plus the prompt variant that produced it.
// The chat.stream span stays open until Close.
type ChatStream struct {
	llm.Stream
	Variant prompts.Variant

	span trace.Span
	once sync.Once
}

// Close releases the upstream stream and ends its span, recording any stream error.
func (c *ChatStream) Close() error {
	err := c.Stream.Close()
	c.once.Do(func() {
		if c.span == nil {
			return
		}
		if serr := c.Stream.Err(); serr != nil {
			c.span.RecordError(serr)
			c.span.SetStatus(codes.Error, serr.Error())
		}
		c.span.End()
	})
	return err
}

// SuggestInput asks for one quick action on a stored trip.
type SuggestInput struct {
	Kind                string            `json:"kind"`
	Weather             string            `json:"weather"`
	DietaryRestrictions models.StringList `json:"dietaryRestrictions"`
}

func (s ChatService) params() (int, float64) {
	maxTokens, temp := s.MaxTokens, DefaultTemperature
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if s.Temperature != nil {
		temp = *s.Temperature
	}
	return maxTokens, temp
}

// Stream routes the conversation to a system prompt and starts generation. When
// the request names a trip but carries no family info, an authenticated caller's
// own trip supplies the context.
func (s ChatService) Stream(ctx context.Context, who domain.Identity, req models.ChatRequest) (*ChatStream, error) {
	if len(req.Messages) == 0 {
		return nil, domain.ValidationError{Field: "messages", Msg: "minimaal een bericht vereist"}
	}

	family := req.FamilyInfo
	if family == nil && strings.TrimSpace(req.TripID) != "" && who.Authenticated() {
		trip, err := s.Trips.Get(ctx, who.UserID, req.TripID)
		if err != nil {
			utils.LogEvent(s.RequestID, "chat", "trip_context", "trip context skipped: "+err.Error())
		} else {
			fc := models.FamilyContextFromTrip(trip)
			family = &fc
		}
	}
	if family != nil {
		normalized := family.Normalized()
		family = &normalized
	}

	sel := prompts.Select(req.Messages, family)
	forward := forwardable(req.Messages)
	if len(forward) == 0 {
		return nil, domain.ValidationError{Field: "messages", Msg: "geen bericht met inhoud"}
	}
	return s.open(ctx, sel, forward)
}

// Suggest streams a quick-action answer for an owned trip.
func (s ChatService) Suggest(ctx context.Context, who domain.Identity, tripID string, in SuggestInput) (*ChatStream, error) {
	kind, ok := prompts.ParseTaskKind(in.Kind)
	if !ok {
		return nil, domain.ValidationError{Field: "kind", Msg: fmt.Sprintf("onbekend type %q", in.Kind)}
	}
	trip, err := s.Trips.Get(ctx, who.UserID, tripID)
	if err != nil {
		return nil, err
	}

	family := models.FamilyContextFromTrip(trip)
	family.DietaryRestrictions = in.DietaryRestrictions
	days := 0
	if trip.StartDate != nil && trip.EndDate != nil {
		days = utils.DaysInclusive(*trip.StartDate, *trip.EndDate)
	}

	prompt, err := prompts.TaskPrompt(kind, prompts.TaskInput{
		Destination: trip.Destination,
		Family:      family,
		Weather:     in.Weather,
		Days:        days,
	})
	if err != nil {
		return nil, domain.ValidationError{Field: "destination", Msg: err.Error(), Err: err}
	}

	sel := prompts.Selection{Variant: prompts.TripPlanner, SystemPrompt: prompts.Template(prompts.TripPlanner)}
	utils.LogEvent(s.RequestID, "chat", "suggest", fmt.Sprintf("trip_id=%s kind=%s", trip.ID, kind))
	return s.open(ctx, sel, []models.ChatMessage{{Role: models.RoleUser, Content: prompt}})
}

func (s ChatService) open(ctx context.Context, sel prompts.Selection, msgs []models.ChatMessage) (*ChatStream, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "chat.stream")
	span.SetAttributes(attribute.String("prompt.variant", string(sel.Variant)))
	telemetry.Count(ctx, "chat_requests_total", attribute.String("variant", string(sel.Variant)))

	if s.Provider == nil {
		err := domain.UpstreamError{Provider: "none", Err: fmt.Errorf("no provider configured")}
		span.RecordError(err)
		span.End()
		return nil, err
	}

	maxTokens, temp := s.params()
	raw, err := s.Provider.Stream(ctx, llm.Request{
		System:      sel.SystemPrompt,
		Messages:    msgs,
		MaxTokens:   maxTokens,
		Temperature: temp,
	})
	if err == nil {
		raw, err = llm.Prefetch(raw)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		utils.LogError(s.RequestID, "chat", "stream", err)
		if !domain.IsUpstream(err) {
			err = domain.UpstreamError{Provider: s.Provider.Name(), Err: err}
		}
		return nil, err
	}

	utils.LogEvent(s.RequestID, "chat", "stream",
		fmt.Sprintf("provider=%s variant=%s messages=%d", s.Provider.Name(), sel.Variant, len(msgs)))
	return &ChatStream{Stream: raw, Variant: sel.Variant, span: span}, nil
}

// forwardable keeps user and assistant turns with content, in order. The
// conversation sent upstream must open with a user turn, so a leading
// assistant greeting is dropped.
func forwardable(msgs []models.ChatMessage) []models.ChatMessage {
	out := make([]models.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		if role != models.RoleUser && role != models.RoleAssistant {
			continue
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		if len(out) == 0 && role == models.RoleAssistant {
			continue
		}
		out = append(out, models.ChatMessage{Role: role, Content: m.Content})
	}
	return out
}
