// Package openai registers the "openai" dialect for OpenAI-compatible
// chat-completions endpoints, including hosted Gemini and local gateways
// that expose the same API.
package openai

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kbukum/minutes/llm"
)

// DialectName is the registered name for the OpenAI-compatible dialect.
const DialectName = "openai"

// ErrNoChoices is returned when a response carries no completion choice.
var ErrNoChoices = errors.New("openai: response has no choices")

func init() {
	llm.RegisterDialect(DialectName, &Dialect{})
}

// Dialect maps completion requests to POST /v1/chat/completions.
type Dialect struct{}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []llm.Message   `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message llm.Message `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (*Dialect) Name() string       { return DialectName }
func (*Dialect) ChatPath() string   { return "/v1/chat/completions" }
func (*Dialect) HealthPath() string { return "/v1/models" }

// BuildRequest produces a chat-completions body. JSON mode maps to
// response_format json_object.
func (*Dialect) BuildRequest(req llm.CompletionRequest) (any, error) {
	body := chatRequest{
		Model:     req.Model,
		Messages:  req.AllMessages(),
		MaxTokens: req.MaxTokens,
	}
	if req.Temperature != 0 {
		t := req.Temperature
		body.Temperature = &t
	}
	if req.JSONMode {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	return body, nil
}

// ParseResponse returns the first choice.
func (*Dialect) ParseResponse(data []byte) (*llm.CompletionResponse, error) {
	var resp chatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("openai: unmarshal response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("openai: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoChoices
	}
	return &llm.CompletionResponse{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage: llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}
