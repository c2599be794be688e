package sentiment

import (
	"context"

	"go.uber.org/zap"

	"github.com/selivandex/newswire/internal/adapters/ai"
	"github.com/selivandex/newswire/pkg/logger"
)

// Scorer is the external AI scoring dependency of the escalator
type Scorer interface {
	ScoreSentiment(ctx context.Context, title, summary, assetType string) (*ai.Evaluation, error)
}

// Escalator wraps the rule-based analyzer with optional AI escalation for
// low-confidence results. The AI call is bounded by its own timeout and any
// failure falls back silently to the rule-based result, so Analyze never
// returns an error and never blocks ingestion indefinitely.
type Escalator struct {
	analyzer      *Analyzer
	scorer        Scorer
	minConfidence float64
}

// NewEscalator creates new escalating analyzer. A nil scorer disables
// escalation entirely.
func NewEscalator(analyzer *Analyzer, scorer Scorer, minConfidence float64) *Escalator {
	return &Escalator{
		analyzer:      analyzer,
		scorer:        scorer,
		minConfidence: minConfidence,
	}
}

// Analyze returns the rule-based result, upgraded by the AI scorer when the
// fast path is not confident enough and a scorer is configured.
func (e *Escalator) Analyze(ctx context.Context, title, summary, assetType string) Result {
	fast := e.analyzer.Analyze(title, summary)

	if e.scorer == nil || fast.Confidence >= e.minConfidence {
		return fast
	}

	eval, err := e.scorer.ScoreSentiment(ctx, title, summary, assetType)
	if err != nil {
		logger.Debug("AI sentiment escalation failed, using rule-based result",
			zap.String("title", truncateTitle(title)),
			zap.Error(err),
		)
		return fast
	}

	return Result{
		Score:       clamp(eval.Score, -1, 1),
		Label:       eval.Label,
		Confidence:  eval.Confidence,
		Explanation: eval.Explanation,
		Source:      SourceAI,
	}
}

// truncateTitle caps log output at 60 runes without splitting a character
func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) > 60 {
		return string(runes[:60])
	}
	return title
}
