package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
	model      = "claude-3-haiku-20240307"
	maxTokens  = 1024
)

// ErrEmptyTicket is returned when there is nothing to analyze.
var ErrEmptyTicket = errors.New("ticket has no items")

// Analyzer summarizes a ticket's device list.
type Analyzer interface {
	AnalyzeTicket(ctx context.Context, ticket string, items []models.DeviceLabel) (*Analysis, error)
}

// Analysis is the model's reading of one ticket.
type Analysis struct {
	Summary    string `json:"summary"`
	Count      int    `json:"count"`
	IsComplete bool   `json:"is_complete"`
}

type anthropicClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient creates a configured Anthropic client.
func NewClient(apiKey string) Analyzer {
	return newClient(apiKey, apiURL)
}

func newClient(apiKey, url string) *anthropicClient {
	client := resty.New().
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("content-type", "application/json").
		SetTimeout(15 * time.Second)

	return &anthropicClient{httpClient: client, url: url}
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []Message `json:"messages"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

const systemPrompt = `You review warehouse tickets for a hospital equipment store.
You receive one ticket number and the list of devices recorded on it.

RULES:
- Write a short summary in Vietnamese (at most 3 sentences) of what the ticket moves and to or from whom.
- Set "is_complete" to false when any device lacks a model/serial or a section, true otherwise.
- Your output must be ONLY a JSON object with this structure:
  {"summary": "...", "is_complete": true or false}
- Escape newlines inside strings (use \n).`

type promptItem struct {
	Device  string `json:"device"`
	Model   string `json:"model"`
	Section string `json:"section"`
	Partner string `json:"partner"`
}

func (c *anthropicClient) AnalyzeTicket(ctx context.Context, ticket string, items []models.DeviceLabel) (*Analysis, error) {
	if len(items) == 0 {
		return nil, ErrEmptyTicket
	}

	payload := make([]promptItem, 0, len(items))
	for _, item := range items {
		payload = append(payload, promptItem{
			Device:  item.DeviceName,
			Model:   item.ModelSerial,
			Section: item.Section,
			Partner: item.Provider,
		})
	}
	itemsJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode ticket items: %w", err)
	}

	reqBody := messageRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages: []Message{
			{Role: "user", Content: fmt.Sprintf("Ticket %s:\n%s", ticket, itemsJSON)},
			// Prefill the assistant response to force JSON
			{Role: "assistant", Content: "{"},
		},
	}

	var respBody messageResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&respBody).
		Post(c.url)
	if err != nil {
		return nil, fmt.Errorf("anthropic api call: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("anthropic api error: %s", resp.String())
	}
	if len(respBody.Content) == 0 {
		return nil, fmt.Errorf("empty response from ai")
	}

	// Reconstruct the full JSON since we prefilled the opening brace
	responseText := stripFences("{" + respBody.Content[0].Text)

	var analysis Analysis
	if err := json.Unmarshal([]byte(responseText), &analysis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ai response: %w", err)
	}
	analysis.Count = len(items)

	return &analysis, nil
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}
