package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/pantry/internal/config"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
	maxTokens  = 256
)

// ErrEmptyResponse is returned when the model replies with no content.
var ErrEmptyResponse = errors.New("empty response from ai")

// Client defines the interface for AI text processing.
type Client interface {
	ExtractVoiceCommand(ctx context.Context, transcript string, today civil.Date) (*VoiceExtraction, error)
}

// VoiceExtraction is the structured form of a spoken pantry command. Dates are
// either fixed (DateValue holds YYYY-MM-DD) or relative (DateValue holds a
// count of DateUnit).
type VoiceExtraction struct {
	Action      string `json:"action"`
	Item        string `json:"item"`
	IsFixedDate bool   `json:"is_fixed_date"`
	DateValue   string `json:"date_value"`
	DateUnit    string `json:"date_unit"`
}

type anthropicClient struct {
	httpClient *resty.Client
	url        string
	model      string
}

// NewClient creates a configured Anthropic client.
func NewClient(cfg config.AIConfig) Client {
	client := resty.New().
		SetHeader("x-api-key", cfg.AnthropicKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("content-type", "application/json").
		SetTimeout(15 * time.Second)

	return &anthropicClient{httpClient: client, url: apiURL, model: cfg.Model}
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

const systemPromptTemplate = `You are a pantry inventory assistant. Current date: %s.
Extract the user's command into a JSON object only, with these fields:
- "action": "add" or "remove"
- "item": the ingredient name as spoken (string)
- "is_fixed_date": true if the user names a calendar date, false if the date is relative or absent
- "date_value": "YYYY-MM-DD" for a fixed date, a whole number for a relative date, "" if no date
- "date_unit": "day", "week", "month" or "year" for a relative date, "" otherwise

Examples:
"ซื้อกีวี อีก 2 ปีหมดอายุ" -> {"action":"add","item":"กีวี","is_fixed_date":false,"date_value":"2","date_unit":"year"}
"นมหมดอายุพรุ่งนี้" -> {"action":"add","item":"นม","is_fixed_date":false,"date_value":"1","date_unit":"day"}
"หมูหมดอายุ 31 ธันวา" -> {"action":"add","item":"หมู","is_fixed_date":true,"date_value":"%d-12-31","date_unit":""}
"throw away the basil" -> {"action":"remove","item":"basil","is_fixed_date":false,"date_value":"","date_unit":""}`

func (c *anthropicClient) ExtractVoiceCommand(ctx context.Context, transcript string, today civil.Date) (*VoiceExtraction, error) {
	reqBody := messageRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    fmt.Sprintf(systemPromptTemplate, today.String(), today.Year),
		Messages: []Message{
			{Role: "user", Content: transcript},
			// Prefill the assistant response to force JSON.
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
		return nil, fmt.Errorf("anthropic api error: status=%d, body=%s", resp.StatusCode(), resp.String())
	}
	if len(respBody.Content) == 0 {
		return nil, ErrEmptyResponse
	}

	responseText := cleanJSON("{" + respBody.Content[0].Text)

	var extraction VoiceExtraction
	if err := json.Unmarshal([]byte(responseText), &extraction); err != nil {
		return nil, fmt.Errorf("unmarshal ai response %q: %w", responseText, err)
	}
	extraction.Action = strings.ToLower(strings.TrimSpace(extraction.Action))
	extraction.Item = strings.TrimSpace(extraction.Item)

	return &extraction, nil
}

// cleanJSON strips markdown code fences the model sometimes wraps JSON in.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "{```") {
		text = strings.TrimPrefix(text, "{")
	}
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "{{") {
		text = text[1:]
	}
	return text
}
