package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/IslamTayeb/job-sheet-tracker/internal/errs"
)

// LLMConfig configures the OpenAI-compatible completion endpoint.
type LLMConfig struct {
	APIBase     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}

type llmRequest struct {
	Model       string       `json:"model"`
	Messages    []llmMessage `json:"messages"`
	Temperature float64      `json:"temperature"`
	MaxTokens   int          `json:"max_tokens"`
}

type llmMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type llmResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client calls a chat-completions endpoint. One request per message,
// no retries; failures surface as service errors.
type Client struct {
	cfg        LLMConfig
	httpClient *http.Client
}

func NewClient(cfg LLMConfig) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	req := llmRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		Messages: []llmMessage{
			{Role: "user", Content: prompt},
		},
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIBase+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", errs.Service(err, "call language model")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", errs.Service(fmt.Errorf("status %d: %s", resp.StatusCode, body), "language model API error")
	}

	var llmResp llmResponse
	if err := json.NewDecoder(resp.Body).Decode(&llmResp); err != nil {
		return "", errs.Service(err, "decode language model response")
	}

	if len(llmResp.Choices) == 0 {
		return "", errs.Service(nil, "empty response from language model")
	}

	return llmResp.Choices[0].Message.Content, nil
}
