package llm

// Message roles understood by all providers
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a message in the conversation
type ChatMessage struct {
	Role    string `json:"role"` // "system", "user", or "assistant"
	Content string `json:"content"`
}

// ChatRequest represents a provider-neutral completion request
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

// Choice is one candidate answer
type Choice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// Usage reports token accounting when the provider returns it
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse represents a non-streaming response
type ChatResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Text returns the first candidate's content, or "" when the response
// carries no usable text.
func (r *ChatResponse) Text() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// HasText reports whether the response has non-empty text
func (r *ChatResponse) HasText() bool {
	return r.Text() != ""
}

// NewTextResponse builds a single-choice assistant response
func NewTextResponse(model, content string) *ChatResponse {
	return &ChatResponse{
		Object: "chat.completion",
		Model:  model,
		Choices: []Choice{
			{
				Message:      ChatMessage{Role: RoleAssistant, Content: content},
				FinishReason: "stop",
			},
		},
	}
}
