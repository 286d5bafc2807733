// Package classify resolves product categories the keyword tables cannot,
// by asking Claude. It backs the bulk ingester's category backfill and is
// entirely optional: runs proceed without it when no API key is configured.
package classify

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/KingPinFPV/basarometer-sub000/internal/config"
	"github.com/KingPinFPV/basarometer-sub000/pkg/anthropic"
)

const systemPrompt = `You classify Israeli retail meat product names into exactly one category.
Valid categories: beef, chicken, turkey, lamb, fish, veal, organ, processed.
Product names are usually Hebrew. Respond with JSON only: {"category":"<category>"}.
If the product is not a meat product or you cannot tell, respond {"category":""}.`

// validCategories mirrors the keyword tables' canonical category set.
var validCategories = map[string]bool{
	"beef": true, "chicken": true, "turkey": true, "lamb": true,
	"fish": true, "veal": true, "organ": true, "processed": true,
}

// Classifier asks Claude for a category when keyword detection comes up
// empty. It satisfies the bulk ingester's CategoryClassifier contract.
type Classifier struct {
	client anthropic.Client
	model  string
	system []anthropic.SystemBlock
}

// New creates a Classifier from configuration, or nil when classification
// is disabled or no API key is set.
func New(cfg config.ClassifyConfig) *Classifier {
	if !cfg.Enabled || cfg.APIKey == "" {
		return nil
	}
	return NewWithClient(anthropic.NewClient(cfg.APIKey), cfg.Model)
}

// NewWithClient creates a Classifier around an existing client.
func NewWithClient(client anthropic.Client, model string) *Classifier {
	return &Classifier{
		client: client,
		model:  model,
		system: anthropic.BuildCachedSystemBlocks(systemPrompt),
	}
}

// Classify returns the category for a product name, or "" when the model
// cannot place it.
func (c *Classifier) Classify(ctx context.Context, name string) (string, error) {
	resp, err := c.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     c.model,
		MaxTokens: 64,
		System:    c.system,
		Messages: []anthropic.Message{
			{Role: "user", Content: name},
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "classify: create message")
	}

	resp.Usage.LogCost(c.model, "classify")

	text := ""
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	category, err := parseCategory(text)
	if err != nil {
		return "", err
	}

	zap.L().Debug("classify: resolved category",
		zap.String("name", name),
		zap.String("category", category),
	)
	return category, nil
}

// parseCategory extracts the category from the model's JSON reply. Replies
// occasionally arrive wrapped in code fences or prose, so it scans for the
// first JSON object.
func parseCategory(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", eris.Errorf("classify: no JSON object in reply %q", text)
	}

	var payload struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return "", eris.Wrapf(err, "classify: parse reply %q", text)
	}

	category := strings.ToLower(strings.TrimSpace(payload.Category))
	if category == "" {
		return "", nil
	}
	if !validCategories[category] {
		return "", eris.Errorf("classify: unknown category %q", category)
	}
	return category, nil
}
