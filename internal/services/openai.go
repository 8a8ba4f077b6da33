package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"

	"yovibe-events-scraper/internal/sources"
)

// OpenAIClient suggests selector maps for new or re-skinned listing sites.
// Selector maps themselves stay hand-maintained configuration; this client
// is an operator tool for rebuilding them when a site's markup changes.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// SelectorSuggestion is the analyzer's proposal for one source
type SelectorSuggestion struct {
	Selectors   sources.SelectorMap `json:"selectors"`
	DateSamples []string            `json:"date_samples"`
	Notes       string              `json:"notes"`
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient() *OpenAIClient {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY environment variable is required")
	}

	return &OpenAIClient{
		client:      openai.NewClient(apiKey),
		model:       "gpt-4o-mini",
		temperature: 0.1,
		maxTokens:   2000,
	}
}

// SuggestSelectors asks the model to propose a selector map for the given
// listing page HTML
func (o *OpenAIClient) SuggestSelectors(ctx context.Context, html, sourceURL string) (*SelectorSuggestion, error) {
	if html == "" {
		return nil, fmt.Errorf("html cannot be empty")
	}

	// Listing pages are huge; the repeated card structure shows up well
	// within the first chunk
	const maxChars = 30000
	if len(html) > maxChars {
		html = html[:maxChars]
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: selectorSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Source URL: %s\n\nHTML:\n%s", sourceURL, html),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response choices from OpenAI")
	}

	cleaned := cleanJSONResponse(resp.Choices[0].Message.Content)

	var suggestion SelectorSuggestion
	if err := json.Unmarshal([]byte(cleaned), &suggestion); err != nil {
		return nil, fmt.Errorf("failed to parse selector suggestion: %w", err)
	}

	if suggestion.Selectors.Card == "" {
		return nil, fmt.Errorf("suggestion missing card selector")
	}

	return &suggestion, nil
}

const selectorSystemPrompt = `You analyze the HTML of event-listing web pages.
Identify the repeated listing card element and the elements inside it that
carry each field. Respond with JSON only, in this shape:

{
  "selectors": {
    "card": "<CSS selector for the repeated listing element>",
    "title": "<selector relative to card>",
    "venue": "<selector>",
    "location": "<selector>",
    "date": "<selector>",
    "date_attr": "<attribute on the date element holding a machine-readable date, or empty>",
    "time": "<selector>",
    "poster": "<selector for the poster img element>",
    "desc": "<selector, or empty if the page has no description>",
    "fee": "<selector, or empty>",
    "link": "<selector for the permalink anchor, or empty>"
  },
  "date_samples": ["<verbatim date strings seen on the page>"],
  "notes": "<anything unusual about the markup>"
}

Prefer class-based selectors over positional ones. Leave optional fields
empty rather than guessing.`

// cleanJSONResponse strips markdown code fences the model sometimes wraps
// around its JSON
func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}
