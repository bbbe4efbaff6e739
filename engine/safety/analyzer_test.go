package safety

import (
	"strings"
	"testing"

	"github.com/MarhabaAI/marhaba-mvp/engine/domain"
)

func TestAnalyze_SafeLeaning(t *testing.T) {
	text := "This area is very safe and tourist-friendly, avoid walking alone at night"

	score, level, recs := Analyze(text)

	// safe: "safe" + "tourist-friendly" = 2, danger: "avoid" = 1
	if score != 10 {
		t.Errorf("score = %d, want 10", score)
	}
	if level != domain.RiskLow {
		t.Errorf("level = %q, want low", level)
	}
	found := false
	for _, r := range recs {
		if strings.Contains(r, "avoid") {
			found = true
		}
	}
	if !found {
		t.Errorf("recommendations %v should include the avoid line", recs)
	}
}

func TestAnalyze_NoKeywords(t *testing.T) {
	score, level, recs := Analyze("The weather is sunny today.")

	if score != 40 {
		t.Errorf("score = %d, want neutral 40", score)
	}
	if level != domain.RiskMedium {
		t.Errorf("level = %q, want medium", level)
	}
	if len(recs) != 2 {
		t.Fatalf("recs = %v, want the two generic fallbacks", recs)
	}
	if recs[0] != genericRecommendations[0] || recs[1] != genericRecommendations[1] {
		t.Errorf("recs = %v, want %v", recs, genericRecommendations)
	}
}

func TestAnalyze_EmptyText(t *testing.T) {
	score, level, recs := Analyze("")

	if score != 40 || level != domain.RiskMedium {
		t.Errorf("empty text = (%d, %q), want (40, medium)", score, level)
	}
	if len(recs) != 2 {
		t.Errorf("recs = %v, want generic fallbacks", recs)
	}
}

func TestRiskScore_DangerBoundsAndMonotonicity(t *testing.T) {
	prev := 0
	for n := 1; n <= 6; n++ {
		text := strings.Repeat("danger ", n)
		score := riskScore(text)
		if score < 70 || score > 95 {
			t.Errorf("danger x%d: score %d outside [70,95]", n, score)
		}
		if score < prev {
			t.Errorf("danger x%d: score %d decreased from %d", n, score, prev)
		}
		prev = score
	}
	if riskScore(strings.Repeat("danger ", 10)) != 95 {
		t.Errorf("score should cap at 95")
	}
}

func TestRiskScore_SafeBoundsAndMonotonicity(t *testing.T) {
	prev := 100
	for n := 1; n <= 6; n++ {
		text := strings.Repeat("secure ", n)
		score := riskScore(text)
		if score < 5 || score > 20 {
			t.Errorf("secure x%d: score %d outside [5,20]", n, score)
		}
		if score > prev {
			t.Errorf("secure x%d: score %d increased from %d", n, score, prev)
		}
		prev = score
	}
	if riskScore(strings.Repeat("secure ", 10)) != 5 {
		t.Errorf("score should floor at 5")
	}
}

func TestRiskScore_SubstringCounting(t *testing.T) {
	// "unsafe" contains "safe", so both sets score one occurrence and the
	// counts tie at the neutral default.
	if got := riskScore("unsafe"); got != 40 {
		t.Errorf("riskScore(unsafe) = %d, want 40", got)
	}
}

func TestLevelFor_Boundaries(t *testing.T) {
	cases := []struct {
		score int
		want  domain.RiskLevel
	}{
		{0, domain.RiskLow},
		{29, domain.RiskLow},
		{30, domain.RiskMedium},
		{59, domain.RiskMedium},
		{60, domain.RiskHigh},
		{79, domain.RiskHigh},
		{80, domain.RiskCritical},
		{100, domain.RiskCritical},
	}
	for _, tc := range cases {
		if got := LevelFor(tc.score); got != tc.want {
			t.Errorf("LevelFor(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestLevelFor_NonDecreasingSeverity(t *testing.T) {
	rank := map[domain.RiskLevel]int{
		domain.RiskLow: 0, domain.RiskMedium: 1, domain.RiskHigh: 2, domain.RiskCritical: 3,
	}
	prev := 0
	for s := 0; s <= 100; s++ {
		r := rank[LevelFor(s)]
		if r < prev {
			t.Fatalf("severity decreased at score %d", s)
		}
		prev = r
	}
}

func TestExtractRecommendations_CapAndOrder(t *testing.T) {
	lines := []string{
		"You should stay hydrated",
		"We recommend sunscreen",
		"Consider a guided tour",
		"Avoid midday heat",
		"Ensure you carry water",
		"You should also book ahead",
		"Plain line with no cue",
	}
	recs := extractRecommendations(strings.Join(lines, "\n"))

	if len(recs) != 5 {
		t.Fatalf("len(recs) = %d, want cap of 5", len(recs))
	}
	for i, want := range lines[:5] {
		if recs[i] != want {
			t.Errorf("recs[%d] = %q, want %q", i, recs[i], want)
		}
	}
}

func TestAnalyze_RecommendationsNeverEmptyNorOverCap(t *testing.T) {
	inputs := []string{
		"",
		"nothing useful",
		"danger danger danger",
		strings.Repeat("you should be careful\n", 20),
	}
	for _, in := range inputs {
		_, _, recs := Analyze(in)
		if len(recs) < 1 || len(recs) > 5 {
			t.Errorf("Analyze(%q): %d recommendations, want 1..5", in, len(recs))
		}
	}
}
