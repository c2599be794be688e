package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/selivandex/newswire/internal/adapters/config"
	"github.com/selivandex/newswire/internal/ingest"
	"github.com/selivandex/newswire/pkg/logger"
)

// Notifier pushes high-relevance articles to a Telegram chat after an
// ingestion run. Delivery is best-effort: failures are logged, never
// propagated back to the orchestrator.
type Notifier struct {
	api          *tgbotapi.BotAPI
	chatID       int64
	minRelevance float64
}

// NewNotifier creates new Telegram notifier
func NewNotifier(cfg *config.TelegramConfig) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	bot.Debug = false

	logger.Info("telegram notifier initialized",
		zap.String("bot_username", bot.Self.UserName),
		zap.Float64("min_relevance", cfg.MinRelevance),
	)

	return &Notifier{
		api:          bot,
		chatID:       cfg.ChatID,
		minRelevance: cfg.MinRelevance,
	}, nil
}

// NotifySaved sends one message per article above the relevance threshold
func (n *Notifier) NotifySaved(articles []ingest.SavedArticle) {
	for _, article := range articles {
		if article.Relevance < n.minRelevance {
			continue
		}

		text := fmt.Sprintf("%s %s\n%s\nrelevance %.2f, sentiment %+.2f",
			sentimentEmoji(article.Sentiment),
			article.Title,
			article.URL,
			article.Relevance,
			article.Sentiment,
		)

		msg := tgbotapi.NewMessage(n.chatID, text)
		msg.DisableWebPagePreview = true

		if _, err := n.api.Send(msg); err != nil {
			logger.Warn("failed to send news alert",
				zap.String("title", article.Title),
				zap.Error(err),
			)
		}
	}
}

func sentimentEmoji(score float64) string {
	switch {
	case score > 0.2:
		return "📈"
	case score < -0.2:
		return "📉"
	default:
		return "📰"
	}
}
