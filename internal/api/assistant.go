package api

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jansevak/jansevak-be/internal/api/middleware"
	"github.com/jansevak/jansevak-be/internal/assistant"
	"github.com/jansevak/jansevak-be/internal/db"
	"github.com/jansevak/jansevak-be/internal/language"
)

// Asker answers a prompt on a channel. *assistant.Service implements it.
type Asker interface {
	Ask(ctx context.Context, channel assistant.Channel, prompt string) assistant.Result
}

// HistoryStore lists stored interactions
type HistoryStore interface {
	RecentInteractions(ctx context.Context, channel string, limit int) ([]db.Interaction, error)
}

// MaxPromptLength caps prompts accepted over HTTP, in runes
const MaxPromptLength = 2000

// AssistantHandler serves the portal chatbot over REST
type AssistantHandler struct {
	assistant Asker
	history   HistoryStore
	languages *language.Manager
}

// NewAssistantHandler creates a handler. history may be nil when no database is configured.
func NewAssistantHandler(a Asker, history HistoryStore, languages *language.Manager) *AssistantHandler {
	if languages == nil {
		languages = language.NewManager()
	}
	return &AssistantHandler{
		assistant: a,
		history:   history,
		languages: languages,
	}
}

// AskRequest represents a chatbot prompt
type AskRequest struct {
	Prompt string `json:"prompt"`
}

// AskResponse carries the assistant's answer
type AskResponse struct {
	Response string `json:"response"`
	Fallback bool   `json:"fallback"`
	Topic    string `json:"topic,omitempty"`
}

// Ask answers a prompt. The answer is always present; only a blank prompt is rejected.
func (h *AssistantHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prompt is required"})
		return
	}
	if len([]rune(req.Prompt)) > MaxPromptLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prompt is too long"})
		return
	}

	res := h.assistant.Ask(c.Request.Context(), assistant.ChannelChat, req.Prompt)
	if res.Err != nil {
		log.Printf("[%s] assistant answered with fallback: %v", c.GetString(middleware.ContextRequestID), res.Err)
	}

	c.JSON(http.StatusOK, AskResponse{
		Response: res.Text,
		Fallback: res.IsFallback(),
		Topic:    string(res.Topic),
	})
}

// History returns recent interactions, newest first
func (h *AssistantHandler) History(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Interaction history is not enabled"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	channel := c.Query("channel")
	switch assistant.Channel(channel) {
	case "", assistant.ChannelChat, assistant.ChannelWS, assistant.ChannelVoice:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown channel"})
		return
	}

	items, err := h.history.RecentInteractions(c.Request.Context(), channel, limit)
	if err != nil {
		log.Printf("Failed to load interactions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"interactions": items,
		"count":        len(items),
	})
}

// Languages lists the assistant's enabled languages
func (h *AssistantHandler) Languages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"default":   language.DefaultLanguage,
		"languages": h.languages.GetSupportedLanguages(),
	})
}
