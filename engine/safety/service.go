package safety

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MarhabaAI/marhaba-mvp/engine/domain"
)

// Generator produces free-text analysis from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service builds safety prompts, calls the generation provider, and scores
// the response. It always returns a structurally complete assessment: on
// provider failure it degrades to the neutral classification rather than
// refusing to answer.
type Service struct {
	gen    Generator
	logger *slog.Logger
}

// New creates a safety Service.
func New(gen Generator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gen: gen, logger: logger}
}

// Assess runs a safety check for the given request.
func (s *Service) Assess(ctx context.Context, req domain.SafetyRequest) domain.SafetyAssessment {
	analysis, err := s.gen.Generate(ctx, buildPrompt(req))
	if err != nil {
		s.logger.Warn("safety analysis provider failed, returning neutral assessment", "err", err)
		return domain.SafetyAssessment{
			RiskScore:       50,
			RiskLevel:       domain.RiskMedium,
			Analysis:        "Safety analysis is temporarily unavailable for this location.",
			Recommendations: []string{"Unable to assess safety at this time"},
			Location:        req.LocationName,
			TimeOfDay:       req.TimeOfDay,
		}
	}

	score, level, recs := Analyze(analysis)
	s.logger.Info("safety assessment complete",
		"location", req.LocationName,
		"risk_score", score,
		"risk_level", level,
	)
	return domain.SafetyAssessment{
		RiskScore:       score,
		RiskLevel:       level,
		Analysis:        analysis,
		Recommendations: recs,
		Location:        req.LocationName,
		TimeOfDay:       req.TimeOfDay,
	}
}

func buildPrompt(req domain.SafetyRequest) string {
	return fmt.Sprintf(`Analyze the safety of this Dubai location:

Location: %s
Coordinates: %g, %g
Time of Day: %s

Provide a safety assessment with:
1. Overall risk score (0-100, where 0 is safest)
2. Risk level (low/medium/high/critical)
3. Specific safety recommendations
4. Time-sensitive concerns

Consider factors like:
- Tourist safety in Dubai
- Time of day risks
- General area safety
- Cultural considerations
- Emergency services availability`,
		req.LocationName, req.Coordinates.Lat, req.Coordinates.Lng, req.TimeOfDay)
}
