package sentiment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/selivandex/newswire/internal/adapters/ai"
)

type fakeScorer struct {
	eval  *ai.Evaluation
	err   error
	calls int
}

func (f *fakeScorer) ScoreSentiment(ctx context.Context, title, summary, assetType string) (*ai.Evaluation, error) {
	f.calls++
	return f.eval, f.err
}

func TestEscalator_NilScorerUsesRuleBased(t *testing.T) {
	escalator := NewEscalator(NewAnalyzer(), nil, 0.7)

	result := escalator.Analyze(context.Background(), "Completely unremarkable headline", "", "CRYPTO")

	if result.Source != SourceRuleBased {
		t.Errorf("Expected rule-based source, got %s", result.Source)
	}
}

func TestEscalator_LowConfidenceEscalates(t *testing.T) {
	scorer := &fakeScorer{
		eval: &ai.Evaluation{Score: 0.8, Label: "positive", Confidence: 0.9, Explanation: "strong upgrade cycle"},
	}
	escalator := NewEscalator(NewAnalyzer(), scorer, 0.7)

	// No sentiment keywords: rule-based confidence is 0.5, below threshold
	result := escalator.Analyze(context.Background(), "Company announces product roadmap", "", "STOCKS")

	if scorer.calls != 1 {
		t.Fatalf("Expected one AI call, got %d", scorer.calls)
	}
	if result.Source != SourceAI {
		t.Errorf("Expected AI source, got %s", result.Source)
	}
	if result.Score != 0.8 {
		t.Errorf("Expected AI score 0.8, got %.3f", result.Score)
	}
	if result.Label != "positive" {
		t.Errorf("Expected AI label, got %s", result.Label)
	}
}

func TestEscalator_HighConfidenceSkipsAI(t *testing.T) {
	scorer := &fakeScorer{
		eval: &ai.Evaluation{Score: -1, Label: "negative", Confidence: 1},
	}
	escalator := NewEscalator(NewAnalyzer(), scorer, 0.7)

	// Four strong bullish terms push rule-based confidence past the threshold
	result := escalator.Analyze(context.Background(),
		"Markets surge and soar in record rally as stocks skyrocket", "", "STOCKS")

	if scorer.calls != 0 {
		t.Errorf("Expected no AI call for confident rule-based result, got %d", scorer.calls)
	}
	if result.Source != SourceRuleBased {
		t.Errorf("Expected rule-based source, got %s", result.Source)
	}
}

func TestEscalator_AIFailureFallsBack(t *testing.T) {
	scorer := &fakeScorer{err: errors.New("api timeout")}
	escalator := NewEscalator(NewAnalyzer(), scorer, 0.7)

	result := escalator.Analyze(context.Background(), "Company announces product roadmap", "", "STOCKS")

	if scorer.calls != 1 {
		t.Fatalf("Expected one AI call, got %d", scorer.calls)
	}
	if result.Source != SourceRuleBased {
		t.Errorf("Expected fallback to rule-based result, got %s", result.Source)
	}
	if result.Score != 0 || result.Label != LabelNeutral {
		t.Errorf("Expected neutral fallback, got %.3f/%s", result.Score, result.Label)
	}
}

func TestEscalator_ClampsAIScore(t *testing.T) {
	scorer := &fakeScorer{
		eval: &ai.Evaluation{Score: 1.5, Label: "positive", Confidence: 0.9},
	}
	escalator := NewEscalator(NewAnalyzer(), scorer, 0.7)

	result := escalator.Analyze(context.Background(), "Company announces product roadmap", "", "STOCKS")

	if result.Score != 1 {
		t.Errorf("Expected score clamped to 1, got %.3f", result.Score)
	}
}

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		wantRunes int
	}{
		{"short passes through", "Markets rally", 13},
		{"long ascii capped", strings.Repeat("a", 100), 60},
		{"long multibyte capped on rune boundary", strings.Repeat("ю", 100), 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateTitle(tt.title)
			if n := utf8.RuneCountInString(got); n != tt.wantRunes {
				t.Errorf("Expected %d runes, got %d", tt.wantRunes, n)
			}
			if !utf8.ValidString(got) {
				t.Error("Truncated title must stay valid UTF-8")
			}
		})
	}
}
