package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/newswire/internal/adapters/config"
	"github.com/selivandex/newswire/pkg/logger"
)

const systemPrompt = `You are a financial news sentiment scorer. ` +
	`Respond with a single JSON object: ` +
	`{"score": <number -1..1>, "label": "positive"|"negative"|"neutral", ` +
	`"confidence": <number 0..1>, "explanation": "<max 50 chars>"}. ` +
	`No other text.`

// Evaluation is the structured response contract of the scoring call
type Evaluation struct {
	Score       float64 `json:"score"`
	Label       string  `json:"label"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
}

// Client calls a chat-completion style API for sentiment scoring
type Client struct {
	apiKey  string
	url     string
	model   string
	timeout time.Duration
	client  *http.Client
}

// NewClient creates new AI scoring client
func NewClient(cfg *config.AIConfig) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		url:     cfg.URL,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// ScoreSentiment asks the model to score a single news item.
// The call is bounded by the configured timeout; callers treat any error
// as a signal to fall back to the rule-based result.
func (c *Client) ScoreSentiment(ctx context.Context, title, summary, assetType string) (*Evaluation, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	userPrompt := fmt.Sprintf("Category: %s\nTitle: %s\nSummary: %s", assetType, title, truncate(summary, 500))

	reqBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"temperature": 0.2,
		"max_tokens":  150,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	startTime := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	content := result.Choices[0].Message.Content

	logger.Debug("AI sentiment response",
		zap.Duration("latency", time.Since(startTime)),
		zap.String("response", content),
	)

	return ParseEvaluation(content)
}

// ParseEvaluation extracts and validates the JSON evaluation from a model
// response that may wrap it in markdown fencing or extra prose.
func ParseEvaluation(content string) (*Evaluation, error) {
	jsonStr := extractJSON(content)

	var eval Evaluation
	if err := json.Unmarshal([]byte(jsonStr), &eval); err != nil {
		return nil, fmt.Errorf("failed to unmarshal evaluation: %w (content: %s)", err, jsonStr)
	}

	if eval.Score < -1 || eval.Score > 1 {
		return nil, fmt.Errorf("score out of range: %f", eval.Score)
	}
	if eval.Confidence < 0 || eval.Confidence > 1 {
		return nil, fmt.Errorf("confidence out of range: %f", eval.Confidence)
	}
	switch eval.Label {
	case "positive", "negative", "neutral":
	default:
		return nil, fmt.Errorf("invalid label: %q", eval.Label)
	}
	eval.Explanation = truncateRunes(eval.Explanation, 50)

	return &eval, nil
}

var fencedJSON = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")

// extractJSON extracts JSON from text that might contain markdown or extra content
func extractJSON(text string) string {
	if m := fencedJSON.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}

	start := strings.Index(text, "{")
	if start < 0 {
		return strings.TrimSpace(text)
	}
	end := strings.LastIndex(text, "}")
	if end > start {
		return strings.TrimSpace(text[start : end+1])
	}

	return strings.TrimSpace(text)
}

// truncateRunes caps a string at max runes without splitting a character
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
