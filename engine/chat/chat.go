// Package chat orchestrates the tourism assistant conversation: it prepends
// the system prompt and supplied history to the user message, optionally
// enriches the prompt with location-graph context, and forwards to the
// generation provider. No conversation state is retained between calls.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MarhabaAI/marhaba-mvp/engine/domain"
	"github.com/MarhabaAI/marhaba-mvp/engine/geo"
)

// SystemPrompt is the fixed persona and guidance for the assistant.
const SystemPrompt = `You are a knowledgeable Dubai tourism assistant.
You help tourists discover Dubai's attractions, culture, and experiences.

Guidelines:
- Keep responses concise (2-5 sentences)
- Be culturally aware (respect for Ramadan, prayer times, dress codes)
- Prioritize safety in all recommendations
- Use markdown formatting for better readability
- Be friendly and helpful

Focus on: attractions, restaurants, culture, safety, transportation, best times to visit.`

// fallbackReply is returned when the generation provider fails; chat
// degrades to a placeholder rather than an error.
const fallbackReply = "I apologize, I'm having trouble answering right now. Please try again in a moment."

// Generator produces a reply from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// PlaceEnricher supplies nearby-location context from the graph.
type PlaceEnricher interface {
	MentionedIn(ctx context.Context, text string) ([]geo.Place, error)
	Neighbors(ctx context.Context, placeID string, depth int) ([]geo.Place, error)
}

// Service is the chat orchestrator.
type Service struct {
	gen      Generator
	enricher PlaceEnricher // nil disables enrichment
	logger   *slog.Logger
}

// New creates a chat Service. enricher may be nil.
func New(gen Generator, enricher PlaceEnricher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gen: gen, enricher: enricher, logger: logger}
}

// Reply answers a user message given optional prior turns. It never returns
// an error: provider failure yields the placeholder reply.
func (s *Service) Reply(ctx context.Context, message string, history []domain.ChatTurn) string {
	prompt := s.buildPrompt(ctx, message, history)

	reply, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("generation provider failed, returning placeholder", "err", err)
		return fallbackReply
	}
	return reply
}

func (s *Service) buildPrompt(ctx context.Context, message string, history []domain.ChatTurn) string {
	var b strings.Builder
	b.WriteString(SystemPrompt)

	if placeContext := s.enrich(ctx, message); placeContext != "" {
		b.WriteString("\n\n")
		b.WriteString(placeContext)
	}

	for _, turn := range history {
		role := "User"
		if turn.Role == "assistant" {
			role = "Assistant"
		}
		fmt.Fprintf(&b, "\n\n%s: %s", role, turn.Content)
	}

	fmt.Fprintf(&b, "\n\nUser: %s", message)
	return b.String()
}

// enrich finds places the message mentions and pulls their graph neighbors;
// failures are logged and skipped.
func (s *Service) enrich(ctx context.Context, message string) string {
	if s.enricher == nil {
		return ""
	}

	places, err := s.enricher.MentionedIn(ctx, message)
	if err != nil {
		s.logger.Warn("graph enrichment failed, continuing without", "err", err)
		return ""
	}
	if len(places) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Known places relevant to this conversation:\n")
	for _, p := range places {
		fmt.Fprintf(&b, "- %s (%s, %s)\n", p.Name, p.Category, p.District)
		neighbors, err := s.enricher.Neighbors(ctx, p.ID, 1)
		if err != nil {
			continue
		}
		for _, n := range neighbors {
			fmt.Fprintf(&b, "  near: %s\n", n.Name)
		}
	}
	return b.String()
}
