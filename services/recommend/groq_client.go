package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultGroqBaseURL = "https://api.groq.com/openai/v1"
	groqModel          = "llama-3.3-70b-versatile"
)

// groqClient speaks the OpenAI-compatible chat completions API. One request
// per call; retries are deliberately absent so a degraded answer comes back
// fast instead of after a backoff cycle.
type groqClient struct {
	baseURL string
	httpc   *http.Client
}

func newGroqClient(baseURL string, httpc *http.Client) *groqClient {
	if baseURL == "" {
		baseURL = defaultGroqBaseURL
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: 60 * time.Second}
	}
	return &groqClient{baseURL: baseURL, httpc: httpc}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionRequest struct {
	Model          string         `json:"model"`
	ResponseFormat responseFormat `json:"response_format"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// complete sends one chat completion and returns the raw message content.
func (c *groqClient) complete(ctx context.Context, apiKey, systemPrompt, userPrompt string) (string, error) {
	reqBody := chatCompletionRequest{
		Model:          groqModel,
		ResponseFormat: responseFormat{Type: "json_object"},
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.7,
		MaxTokens:   8000,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("completion API error %d: %s", resp.StatusCode, string(detail))
	}

	var parsed chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("completion API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", errors.New("completion returned empty response")
	}
	return parsed.Choices[0].Message.Content, nil
}
