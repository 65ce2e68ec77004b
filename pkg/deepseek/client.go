package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jansevak/jansevak-be/pkg/llm"
)

const (
	defaultBaseURL = "https://api.deepseek.com/v1"
	defaultModel   = "deepseek-chat"
)

// HTTPClient answers prompts through DeepSeek's OpenAI-compatible API
type HTTPClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

var _ llm.Client = (*HTTPClient)(nil)

// Config holds configuration for the DeepSeek client
type Config struct {
	APIKey  string
	BaseURL string        // Default: https://api.deepseek.com/v1
	Model   string        // Default: deepseek-chat
	Timeout time.Duration // Default: 30s
}

// NewHTTPClient creates a DeepSeek client
func NewHTTPClient(config Config) *HTTPClient {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &HTTPClient{
		apiKey:     config.APIKey,
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		model:      config.Model,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// Model returns the model requests are sent to when none is set on the request
func (c *HTTPClient) Model() string {
	return c.model
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *HTTPClient) toCompletionRequest(req llm.ChatRequest) completionRequest {
	model := req.Model
	if model == "" {
		model = c.model
	}

	messages := make([]chatMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	return completionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
}

// toChatResponse maps the wire response onto llm types; a null content becomes ""
func toChatResponse(cr completionResponse) *llm.ChatResponse {
	out := &llm.ChatResponse{
		ID:      cr.ID,
		Object:  "chat.completion",
		Created: cr.Created,
		Model:   cr.Model,
		Usage: llm.Usage{
			PromptTokens:     cr.Usage.PromptTokens,
			CompletionTokens: cr.Usage.CompletionTokens,
			TotalTokens:      cr.Usage.TotalTokens,
		},
	}

	for _, ch := range cr.Choices {
		var text string
		if ch.Message.Content != nil {
			text = *ch.Message.Content
		}
		out.Choices = append(out.Choices, llm.Choice{
			Index:        ch.Index,
			Message:      llm.ChatMessage{Role: llm.RoleAssistant, Content: text},
			FinishReason: ch.FinishReason,
		})
	}

	return out
}

// ChatCompletion implements llm.Client
func (c *HTTPClient) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	body, err := json.Marshal(c.toCompletionRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("deepseek request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("deepseek returned status %d (%s): %s", resp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("deepseek returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var cr completionResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return toChatResponse(cr), nil
}
