package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/microgreens/internal/domain/models"
)

const (
	apiURL       = "https://api.anthropic.com/v1/messages"
	apiVersion   = "2023-06-01"
	defaultModel = "claude-3-haiku-20240307"
	maxTokens    = 2048
)

// ErrEmptyResponse indicates the model returned no content.
var ErrEmptyResponse = errors.New("empty response from ai")

// Client calls the Anthropic Messages API for demand forecasts and sowing advice.
type Client struct {
	httpClient *resty.Client
	endpoint   string
	model      string
}

// Option customises a Client.
type Option func(*Client)

// WithEndpoint overrides the Messages API URL.
func WithEndpoint(url string) Option {
	return func(c *Client) { c.endpoint = url }
}

// NewClient creates a configured Anthropic client. An empty model selects the default.
func NewClient(apiKey, model string, opts ...Option) *Client {
	if model == "" {
		model = defaultModel
	}
	client := resty.New().
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("content-type", "application/json").
		SetTimeout(30 * time.Second)

	c := &Client{httpClient: client, endpoint: apiURL, model: model}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type messageRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system"`
	Messages    []Message `json:"messages"`
}

// Message is one turn of a Messages API conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

const forecastSystem = `You are a demand forecasting expert for a microgreens business.
Based on historical sales data (in 50g boxes), predict the demand for each microgreen variety for the next 4 weeks.
Analyze trends, seasonality, and individual variety performance.
Answer with only a JSON array of 4 objects, one per week, each with "week" ("Week 1", "Week 2", ...) and "predictions",
an array of {"variety": string, "quantity": integer}. Only include varieties with a predicted demand greater than 0.`

const suggestionSystem = `You are an expert agricultural advisor for a microgreens farm. Help the farmer decide what to sow today
to maximize profit and meet future demand. Generate 3 to 5 actionable, specific sowing suggestions phrased as direct commands,
e.g. "Sow 5 trays of Sunflower." Consider sowing consistently popular items, re-ordering low-stock seed before sowing it or
sowing a smaller test batch, and testing less popular items.
Answer with only a JSON array of {"suggestion": string, "reason": string}.`

// Forecast predicts four weeks of demand from completed sales.
func (c *Client) Forecast(ctx context.Context, history []models.HistoricalSale) (models.ForecastData, error) {
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("encode sales history: %w", err)
	}

	var forecast models.ForecastData
	prompt := "Historical Data:\n" + string(historyJSON)
	if err := c.completeJSON(ctx, forecastSystem, prompt, 0.2, &forecast); err != nil {
		return nil, err
	}
	return forecast, nil
}

// SowingSuggestions asks for advisory sowing actions.
func (c *Client) SowingSuggestions(ctx context.Context, in models.SuggestionContext) ([]models.SowingSuggestion, error) {
	top, _ := json.Marshal(in.TopSellers)
	low, _ := json.Marshal(in.LowStockSeeds)
	varieties, _ := json.Marshal(in.Varieties)

	prompt := fmt.Sprintf("1. Top 5 best-selling varieties (historical): %s\n2. Varieties with low seed stock: %s\n3. Available varieties and growth cycles (days): %s",
		top, low, varieties)

	var suggestions []models.SowingSuggestion
	if err := c.completeJSON(ctx, suggestionSystem, prompt, 0.4, &suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}

// completeJSON sends one user turn, prefills the assistant reply with "[" to force a JSON
// array, and decodes the result into out.
func (c *Client) completeJSON(ctx context.Context, system, prompt string, temperature float64, out any) error {
	reqBody := messageRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		System:      system,
		Messages: []Message{
			{Role: "user", Content: prompt},
			{Role: "assistant", Content: "["},
		},
	}

	var respBody messageResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&respBody).
		Post(c.endpoint)
	if err != nil {
		return fmt.Errorf("anthropic api call: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("anthropic api error: status %d: %s", resp.StatusCode(), resp.String())
	}
	if len(respBody.Content) == 0 {
		return ErrEmptyResponse
	}

	text := cleanJSON("[" + respBody.Content[0].Text)
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("decode ai response: %w", err)
	}
	return nil
}

// cleanJSON strips markdown code fences the model sometimes wraps around its answer.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "[```") {
		text = strings.TrimPrefix(text, "[")
	}
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}
