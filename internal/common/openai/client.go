// internal/common/openai/client.go
// Package openai is a minimal client for OpenAI-compatible chat-completion
// APIs, covering only what summary generation needs.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"survey-workers/internal/common/config"
	"survey-workers/internal/common/errors"
)

type Client struct {
	cfg        config.OpenAIConfig
	httpClient *http.Client
}

func NewClient(cfg config.OpenAIConfig) *Client {
	return &Client{
		cfg: cfg,
		// No client-level timeout; the caller's context bounds the call.
		httpClient: &http.Client{},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// CreateJSONCompletion sends one chat completion request constrained to a
// JSON-object response and returns the raw message content. Transport-level
// failures (network, non-2xx, undecodable envelope) come back as retryable
// EXTERNAL_CALL_FAILURE errors.
func (c *Client) CreateJSONCompletion(ctx context.Context, system, user string) (string, error) {
	reqBody := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
		Temperature:    c.cfg.Temperature,
		MaxTokens:      c.cfg.MaxTokens,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.NewExternalCallFailureError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", errors.NewExternalCallFailureError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.NewExternalCallFailureError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", errors.NewExternalCallFailureError(
			fmt.Errorf("status %d: %s", resp.StatusCode, string(snippet)))
	}

	var apiResponse chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", errors.NewExternalCallFailureError(fmt.Errorf("decode response: %w", err))
	}

	if len(apiResponse.Choices) == 0 {
		return "", errors.NewExternalCallFailureError(fmt.Errorf("response contained no choices"))
	}

	return apiResponse.Choices[0].Message.Content, nil
}
