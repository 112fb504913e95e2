// Package ollama registers the "ollama" dialect for Ollama's native chat API.
package ollama

import (
	"encoding/json"
	"fmt"

	"github.com/kbukum/minutes/llm"
)

// DialectName is the registered name for the Ollama dialect.
const DialectName = "ollama"

func init() {
	llm.RegisterDialect(DialectName, &Dialect{})
}

// Dialect maps completion requests to POST /api/chat.
type Dialect struct{}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []llm.Message `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
	Options  *options      `json:"options,omitempty"`
}

type options struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatResponse struct {
	Model           string      `json:"model"`
	Message         llm.Message `json:"message"`
	Done            bool        `json:"done"`
	PromptEvalCount int         `json:"prompt_eval_count"`
	EvalCount       int         `json:"eval_count"`
	Error           string      `json:"error,omitempty"`
}

func (*Dialect) Name() string       { return DialectName }
func (*Dialect) ChatPath() string   { return "/api/chat" }
func (*Dialect) HealthPath() string { return "/api/tags" }

// BuildRequest produces a non-streaming chat request.
func (*Dialect) BuildRequest(req llm.CompletionRequest) (any, error) {
	body := chatRequest{
		Model:    req.Model,
		Messages: req.AllMessages(),
	}
	if req.JSONMode {
		body.Format = "json"
	}
	if req.Temperature != 0 || req.MaxTokens != 0 {
		body.Options = &options{Temperature: req.Temperature, NumPredict: req.MaxTokens}
	}
	return body, nil
}

// ParseResponse reads a single non-streamed chat response.
func (*Dialect) ParseResponse(data []byte) (*llm.CompletionResponse, error) {
	var resp chatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("ollama: unmarshal response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("ollama: %s", resp.Error)
	}
	return &llm.CompletionResponse{
		Content: resp.Message.Content,
		Model:   resp.Model,
		Usage: llm.Usage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		},
	}, nil
}
