// Package safety performs AI-assisted safety assessments. The generation
// provider supplies free-text analysis; a deterministic keyword heuristic
// (not a learned classifier) derives the numeric score, level bucket, and
// recommendation list from that text.
package safety

import (
	"strings"

	"github.com/MarhabaAI/marhaba-mvp/engine/domain"
)

// Keyword sets driving the heuristic. Counting is literal substring
// occurrence: no stemming, no word boundaries.
var (
	safeKeywords   = []string{"safe", "low risk", "secure", "protected", "tourist-friendly"}
	dangerKeywords = []string{"danger", "high risk", "avoid", "caution", "unsafe", "critical"}
)

// recommendationCues mark lines worth surfacing as recommendations.
var recommendationCues = []string{"should", "recommend", "consider", "avoid", "ensure"}

// genericRecommendations backstop the list so it is never empty.
var genericRecommendations = []string{
	"Stay aware of your surroundings",
	"Follow local customs and laws",
}

const maxRecommendations = 5

// Scoring constants. Neutral applies when the keyword counts tie,
// including when both are zero.
const (
	neutralScore = 40
	dangerBase   = 70
	dangerStep   = 10
	dangerCap    = 95
	safeBase     = 20
	safeStep     = 5
	safeFloor    = 5
)

// Analyze derives a risk score, level, and recommendations from analysis
// text. It is pure: same text in, same assessment fragment out.
func Analyze(analysis string) (score int, level domain.RiskLevel, recommendations []string) {
	score = riskScore(analysis)
	return score, LevelFor(score), extractRecommendations(analysis)
}

func riskScore(analysis string) int {
	lower := strings.ToLower(analysis)

	var safeCount, dangerCount int
	for _, kw := range safeKeywords {
		safeCount += strings.Count(lower, kw)
	}
	for _, kw := range dangerKeywords {
		dangerCount += strings.Count(lower, kw)
	}

	switch {
	case dangerCount > safeCount:
		return min(dangerBase+dangerStep*dangerCount, dangerCap)
	case safeCount > dangerCount:
		return max(safeBase-safeStep*safeCount, safeFloor)
	default:
		return neutralScore
	}
}

// LevelFor maps a risk score to its level bucket. Boundaries sit exactly
// at 30, 60, and 80.
func LevelFor(score int) domain.RiskLevel {
	switch {
	case score < 30:
		return domain.RiskLow
	case score < 60:
		return domain.RiskMedium
	case score < 80:
		return domain.RiskHigh
	default:
		return domain.RiskCritical
	}
}

// extractRecommendations keeps lines of the original text containing a
// recommendation cue, in original order, capped at maxRecommendations.
func extractRecommendations(analysis string) []string {
	var recs []string
	for _, line := range strings.Split(analysis, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		for _, cue := range recommendationCues {
			if strings.Contains(lower, cue) {
				recs = append(recs, line)
				break
			}
		}
		if len(recs) == maxRecommendations {
			break
		}
	}
	if len(recs) == 0 {
		return append([]string(nil), genericRecommendations...)
	}
	return recs
}
