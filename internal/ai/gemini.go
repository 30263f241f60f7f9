package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/leadscout/leadscout/internal/config"
	"github.com/leadscout/leadscout/internal/leadscore"
)

const (
	geminiMaxRetries = 2
	geminiRetryDelay = 2 * time.Second
)

var geminiTemperature = float32(0.1)

var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"is_lead":            {Type: genai.TypeBoolean, Description: "Whether the user shows clear interest in the services."},
		"confidence_score":   {Type: genai.TypeNumber, Description: "Confidence from 0 to 100."},
		"lead_quality":       {Type: genai.TypeString, Description: "One of: hot, warm, cold, not_lead."},
		"interests":          {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"buying_signals":     {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"urgency_level":      {Type: genai.TypeString, Description: "One of: immediate, short_term, long_term, none."},
		"recommended_action": {Type: genai.TypeString},
		"key_insights":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"estimated_budget":   {Type: genai.TypeString, Nullable: genai.Ptr(true)},
		"timeline":           {Type: genai.TypeString, Nullable: genai.Ptr(true)},
		"pain_points":        {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"decision_stage":     {Type: genai.TypeString, Description: "One of: awareness, consideration, decision, post_purchase."},
	},
	Required: []string{"is_lead", "confidence_score", "lead_quality"},
}

type geminiScorer struct {
	genaiClient *genai.Client
	log         *slog.Logger
	modelName   string
}

func newGeminiScorer(ctx context.Context, cfg config.AIConfig, log *slog.Logger) (Scorer, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Token,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	logger := log.With("component", "gemini_scorer")
	logger.Info("Gemini classifier initialized", "model", cfg.Model)
	return &geminiScorer{
		genaiClient: gi,
		log:         logger,
		modelName:   cfg.Model,
	}, nil
}

func (c *geminiScorer) AnalyzeContext(ctx context.Context, uc *UserContext) (*leadscore.Analysis, error) {
	c.log.DebugContext(ctx, "Analyzing user context", "user_id", uc.UserID, "message_count", len(uc.Messages))

	contents := []*genai.Content{genai.NewContentFromText(buildAnalysisPrompt(uc), genai.RoleUser)}
	contentCfg := &genai.GenerateContentConfig{
		Temperature:      &geminiTemperature,
		ResponseMIMEType: "application/json",
		ResponseSchema:   analysisSchema,
	}

	resp, err := c.generateContentWithRetries(ctx, contents, contentCfg)
	if err != nil {
		c.log.ErrorContext(ctx, "Gemini analysis API call failed", "user_id", uc.UserID, "error", err)
		return nil, fmt.Errorf("gemini analysis failed: %w", err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		c.log.ErrorContext(ctx, "Gemini analysis blocked",
			"reason", resp.PromptFeedback.BlockReason, "message", resp.PromptFeedback.BlockReasonMessage)
		return nil, fmt.Errorf("gemini analysis blocked: %s", resp.PromptFeedback.BlockReasonMessage)
	}

	text := resp.Text()
	if text == "" {
		return nil, errors.New("gemini analysis returned empty content")
	}

	return leadscore.Decode(text), nil
}

func (c *geminiScorer) generateContentWithRetries(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var resp *genai.GenerateContentResponse
	var err error

	for i := 0; i <= geminiMaxRetries; i++ {
		resp, err = c.genaiClient.Models.GenerateContent(ctx, c.modelName, contents, cfg)
		if err == nil {
			return resp, nil
		}

		c.log.WarnContext(ctx, "Gemini API call failed, checking for retry",
			"attempt", i+1, "max_retries", geminiMaxRetries, "error", err)

		var apiErr *genai.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == 500 || apiErr.Code == 503) {
			if i < geminiMaxRetries {
				select {
				case <-time.After(geminiRetryDelay):
					continue
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
			return nil, fmt.Errorf("gemini API call failed after %d retries (APIError code %d): %w", geminiMaxRetries, apiErr.Code, err)
		}

		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}
	return nil, err
}
