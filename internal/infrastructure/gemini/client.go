package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/blindmatch/backend/internal/config"
	"github.com/blindmatch/backend/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client wraps the Gemini API for the two things the matchmaker needs:
// persona-driven structured replies and profile embeddings.
type Client struct {
	client    *genai.Client
	chat      *genai.GenerativeModel
	embedding *genai.EmbeddingModel
	validate  *validator.Validate
}

func NewClient(ctx context.Context, cfg *config.GeminiConfig) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	chat := client.GenerativeModel(cfg.ChatModel)
	chat.SetTemperature(0.7)
	chat.SetMaxOutputTokens(300)
	chat.ResponseMIMEType = "application/json"

	return &Client{
		client:    client,
		chat:      chat,
		embedding: client.EmbeddingModel(cfg.EmbeddingModel),
		validate:  validator.New(),
	}, nil
}

func (c *Client) Close() {
	c.client.Close()
}

// GenerateReply runs one conversation step: persona instructions plus the
// structured context plus the latest inbound message in, a strictly
// validated GeneratedReply out. Any malformed or out-of-enum output is
// returned as an error so the caller can fail closed.
func (c *Client) GenerateReply(ctx context.Context, persona string, convContext map[string]any, message string) (*domain.GeneratedReply, error) {
	rawContext, err := json.Marshal(convContext)
	if err != nil {
		return nil, fmt.Errorf("failed to encode conversation context: %w", err)
	}

	prompt := fmt.Sprintf(`%s

Current context: %s

The user just sent: %q

Respond with a single JSON object with these fields:
- "message": the SMS reply to send (string, required)
- "next_state": one of "new", "onboarding", "gathering_preferences", "active", "available_tonight"
- "context_updates": object with keys to merge into the conversation context (optional)
- "actions": array drawn from "create_embedding", "update_profile", "record_answer", "check_availability", "find_matches" (optional)

Output only the JSON object.`, persona, rawContext, message)

	resp, err := c.chat.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini returned no content")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	responseText := strings.TrimSpace(sb.String())
	// Clean up markdown code blocks if present
	responseText = strings.TrimPrefix(responseText, "```json")
	responseText = strings.TrimPrefix(responseText, "```")
	responseText = strings.TrimSuffix(responseText, "```")
	responseText = strings.TrimSpace(responseText)

	var reply domain.GeneratedReply
	if err := json.Unmarshal([]byte(responseText), &reply); err != nil {
		return nil, fmt.Errorf("failed to parse generator reply: %w", err)
	}
	if err := c.validate.Struct(&reply); err != nil {
		return nil, fmt.Errorf("generator reply failed validation: %w", err)
	}
	return &reply, nil
}

// Embed returns the embedding vector for the given summary text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := c.embedding.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("embedding response empty")
	}
	values := make([]float64, len(resp.Embedding.Values))
	for i, v := range resp.Embedding.Values {
		values[i] = float64(v)
	}
	return values, nil
}
