package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/entity"
)

// Client turns a long-form weekly teaching into short notification snippets
type Client struct {
	client *openai.Client
	model  string
}

func New(apiKey, baseURL, model string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

const systemPrompt = `You prepare a week of devotional push notifications from a teaching.

Split the teaching into %d to %d standalone snippets, in the order they appear.
For each snippet return:
- id: a short lowercase slug, unique within the week
- title: at most 6 words
- subtitle: at most 10 words, may be empty
- snippet: the notification text, at most 180 characters, faithful to the teaching
- body: the paragraph of the teaching the snippet was drawn from
- scripture: the Bible reference and verse text quoted by that paragraph, empty strings if none

Never invent scripture that the teaching does not quote.`

var snippetsSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"snippets": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"id": {"type": "string"},
					"title": {"type": "string"},
					"subtitle": {"type": "string"},
					"snippet": {"type": "string"},
					"body": {"type": "string"},
					"scripture": {
						"type": "object",
						"properties": {
							"reference": {"type": "string"},
							"text": {"type": "string"}
						},
						"required": ["reference", "text"],
						"additionalProperties": false
					}
				},
				"required": ["id", "title", "subtitle", "snippet", "body", "scripture"],
				"additionalProperties": false
			}
		}
	},
	"required": ["snippets"],
	"additionalProperties": false
}`)

type extraction struct {
	Snippets []entity.SnippetDocument `json:"snippets"`
}

// Snippets extracts between minCount and maxCount snippets from teaching
func (c *Client) Snippets(ctx context.Context, teaching string, minCount, maxCount int) ([]entity.SnippetDocument, error) {
	if strings.TrimSpace(teaching) == "" {
		return nil, fmt.Errorf("teaching is empty")
	}
	if minCount < 1 || maxCount < minCount {
		return nil, fmt.Errorf("invalid snippet range %d-%d", minCount, maxCount)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(systemPrompt, minCount, maxCount),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: teaching,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "weekly_snippets",
				Schema: snippetsSchema,
				Strict: true,
			},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call AI API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from AI")
	}

	var out extraction
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &out); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	return dedupe(out.Snippets), nil
}

// dedupe drops snippets without text and makes ids unique
func dedupe(snippets []entity.SnippetDocument) []entity.SnippetDocument {
	used := make(map[string]bool, len(snippets))
	out := make([]entity.SnippetDocument, 0, len(snippets))

	for _, s := range snippets {
		if strings.TrimSpace(s.Snippet) == "" {
			continue
		}

		base := strings.TrimSpace(s.ID)
		if base == "" {
			base = "snippet"
		}
		id := base
		for n := 2; used[id]; n++ {
			id = fmt.Sprintf("%s-%d", base, n)
		}
		used[id] = true
		s.ID = id

		out = append(out, s)
	}

	return out
}
