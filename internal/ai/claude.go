package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/leadscout/leadscout/internal/config"
	"github.com/leadscout/leadscout/internal/leadscore"
)

const claudeMaxTokens = 2000

type claudeScorer struct {
	client    *anthropic.Client
	log       *slog.Logger
	modelName string
}

func newClaudeScorer(cfg config.AIConfig, log *slog.Logger) (Scorer, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("claude API key is required")
	}

	logger := log.With("component", "claude_scorer")
	logger.Info("Claude classifier initialized", "model", cfg.Model)
	return &claudeScorer{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.Token)),
		log:       logger,
		modelName: cfg.Model,
	}, nil
}

func (c *claudeScorer) AnalyzeContext(ctx context.Context, uc *UserContext) (*leadscore.Analysis, error) {
	c.log.DebugContext(ctx, "Analyzing user context", "user_id", uc.UserID, "message_count", len(uc.Messages))

	messages := []anthropic.MessageParam{
		{
			Role: anthropic.F(anthropic.MessageParamRoleUser),
			Content: anthropic.F([]anthropic.ContentBlockParamUnion{
				anthropic.TextBlockParam{
					Type: anthropic.F(anthropic.TextBlockParamTypeText),
					Text: anthropic.F(buildAnalysisPrompt(uc)),
				},
			}),
		},
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.F(c.modelName),
		MaxTokens:   anthropic.F(int64(claudeMaxTokens)),
		Temperature: anthropic.F(0.1),
		Messages:    anthropic.F(messages),
	})
	if err != nil {
		c.log.ErrorContext(ctx, "Claude analysis API call failed", "user_id", uc.UserID, "error", err)
		return nil, fmt.Errorf("claude analysis failed: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			text += block.Text
		}
	}
	if text == "" {
		return nil, errors.New("claude analysis returned empty content")
	}

	return leadscore.Decode(text), nil
}
