package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jansevak/jansevak-be/pkg/llm"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultModel   = "gemini-2.5-flash"
)

// HTTPClient implements the llm.Client interface for Gemini using REST API
type HTTPClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Ensure HTTPClient implements llm.Client
var _ llm.Client = (*HTTPClient)(nil)

// Config holds configuration for the Gemini client
type Config struct {
	APIKey  string
	BaseURL string        // Default: generativelanguage v1beta models endpoint
	Model   string        // Default: gemini-2.5-flash
	Timeout time.Duration // Default: 30s
}

// NewHTTPClient creates a new Gemini HTTP client
func NewHTTPClient(config Config) *HTTPClient {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &HTTPClient{
		apiKey:  config.APIKey,
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		model:   config.Model,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		},
	}
}

// Model returns the model requests are sent to when none is set on the request
func (c *HTTPClient) Model() string {
	return c.model
}

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64         `json:"temperature,omitempty"`
	MaxOutputTokens int             `json:"maxOutputTokens,omitempty"`
	ThinkingConfig  *thinkingConfig `json:"thinkingConfig,omitempty"`
}

type thinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

// thinksByDefault reports models whose thinking tokens count against maxOutputTokens
func thinksByDefault(model string) bool {
	return strings.HasPrefix(model, "gemini-2.5-flash")
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

// toGenerateRequest maps system messages onto systemInstruction and the
// remaining turns onto contents ("assistant" becomes "model"). A capped
// request to a thinking model turns thinking off so the cap covers the answer.
func toGenerateRequest(model string, req llm.ChatRequest) generateRequest {
	var (
		system   []part
		contents = make([]content, 0, len(req.Messages))
	)

	for _, msg := range req.Messages {
		switch msg.Role {
		case llm.RoleSystem:
			system = append(system, part{Text: msg.Content})
		case llm.RoleAssistant:
			contents = append(contents, content{Role: "model", Parts: []part{{Text: msg.Content}}})
		default:
			contents = append(contents, content{Role: "user", Parts: []part{{Text: msg.Content}}})
		}
	}

	gr := generateRequest{
		Contents: contents,
		GenerationConfig: generationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		},
	}
	if req.MaxTokens > 0 && thinksByDefault(model) {
		gr.GenerationConfig.ThinkingConfig = &thinkingConfig{ThinkingBudget: 0}
	}
	if len(system) > 0 {
		gr.SystemInstruction = &content{Parts: system}
	}
	return gr
}

// joinParts concatenates every text part of a candidate
func joinParts(parts []part) string {
	if len(parts) == 1 {
		return parts[0].Text
	}
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// ChatCompletion implements llm.Client.ChatCompletion
func (c *HTTPClient) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	url := fmt.Sprintf("%s/%s:generateContent", c.baseURL, model)

	body, err := json.Marshal(toGenerateRequest(model, req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var gResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	out := &llm.ChatResponse{
		Object: "chat.completion",
		Model:  model,
		Usage: llm.Usage{
			PromptTokens:     gResp.UsageMetadata.PromptTokenCount,
			CompletionTokens: gResp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      gResp.UsageMetadata.TotalTokenCount,
		},
	}
	if gResp.ModelVersion != "" {
		out.Model = gResp.ModelVersion
	}

	// A blocked or empty candidate list is a successful call with no text.
	for i, cand := range gResp.Candidates {
		out.Choices = append(out.Choices, llm.Choice{
			Index: i,
			Message: llm.ChatMessage{
				Role:    llm.RoleAssistant,
				Content: joinParts(cand.Content.Parts),
			},
			FinishReason: cand.FinishReason,
		})
	}

	return out, nil
}
