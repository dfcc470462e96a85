package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"clipfinder/internal/models"
	"clipfinder/shared/config"

	"google.golang.org/genai"
)

const interpretPrompt = `Find this NBA game and return JSON:

{
  "player": "full player name (resolve nicknames like KD to Kevin Durant, Steph to Stephen Curry)",
  "player_team": "player's team at the time of the game",
  "opponent": "opponent team name",
  "event_type": "one of: block, 3-pointer, dunk, free throw, game winner, highlight",
  "game_date": "YYYY-MM-DD"
}

Search for the most relevant information about this game; infer the correct event type from the query.`

// Interpreter turns a free-text highlight query into a structured Descriptor
// using Gemini with web search grounding. The model's output is untrusted
// conversational text; the JSON payload is dug out of whatever wrapping it
// arrives in.
type Interpreter struct {
	client *genai.Client
	model  string
}

func NewInterpreter(cfg *config.AIConfig) (*Interpreter, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini API key is not configured")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Interpreter{
		client: client,
		model:  cfg.Model,
	}, nil
}

// Interpret sends the query to the model and parses the descriptor out of the
// response. It never retries; callers own the decision to degrade or try
// again.
func (i *Interpreter) Interpret(ctx context.Context, query string) (models.Descriptor, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(interpretPrompt + "\n\nQuery: " + query),
		}, genai.RoleUser),
	}

	// Web search grounding lets the model pin down the actual game date and
	// resolve player nicknames.
	cfg := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
	}

	result, err := i.client.Models.GenerateContent(ctx, i.model, contents, cfg)
	if err != nil {
		return models.Descriptor{}, fmt.Errorf("failed to interpret query: %w", err)
	}

	responseText := result.Text()
	if responseText == "" {
		return models.Descriptor{}, fmt.Errorf("empty response from model")
	}

	return parseDescriptor(responseText)
}

func parseDescriptor(response string) (models.Descriptor, error) {
	jsonStr, err := extractJSON(response)
	if err != nil {
		return models.Descriptor{}, err
	}

	var desc models.Descriptor
	if err := json.Unmarshal([]byte(jsonStr), &desc); err != nil {
		return models.Descriptor{}, fmt.Errorf("failed to unmarshal descriptor '%s': %w", jsonStr, err)
	}

	return desc, nil
}

// extractJSON pulls the first {...} object out of a model response,
// tolerating markdown code fences and conversational text around it.
func extractJSON(response string) (string, error) {
	cleaned := strings.ReplaceAll(response, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	startIdx := strings.Index(cleaned, "{")
	endIdx := strings.LastIndex(cleaned, "}")

	if startIdx == -1 || endIdx <= startIdx {
		return "", fmt.Errorf("no JSON found in response: %s", response)
	}

	return cleaned[startIdx : endIdx+1], nil
}
