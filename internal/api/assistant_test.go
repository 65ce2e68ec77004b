package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jansevak/jansevak-be/internal/assistant"
	"github.com/jansevak/jansevak-be/internal/classifier"
	"github.com/jansevak/jansevak-be/internal/db"
	"github.com/jansevak/jansevak-be/internal/fallback"
	"github.com/jansevak/jansevak-be/internal/language"
)

func newAssistantRouter(h *AssistantHandler) *gin.Engine {
	r := gin.New()
	r.POST("/api/assistant/ask", h.Ask)
	r.GET("/api/assistant/history", h.History)
	r.GET("/api/languages", h.Languages)
	return r
}

func TestAssistantHandler_Ask(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		result     assistant.Result
		wantStatus int
		wantCalls  int
		wantBody   string
	}{
		{
			name:       "remote answer",
			body:       `{"prompt":"What is PM Awas Yojana?"}`,
			result:     assistant.Result{Text: "PM Awas Yojana helps build pucca houses.", Outcome: assistant.OutcomeRemote},
			wantStatus: http.StatusOK,
			wantCalls:  1,
			wantBody:   "pucca houses",
		},
		{
			name:       "fallback answer",
			body:       `{"prompt":"Tell me about kisan scheme"}`,
			result:     assistant.Result{Text: "₹6,000 per year to farmer families", Outcome: assistant.OutcomeNoCredential, Topic: classifier.TopicFarmer},
			wantStatus: http.StatusOK,
			wantCalls:  1,
			wantBody:   `"fallback":true`,
		},
		{
			name:       "transport error still answers",
			body:       `{"prompt":"hello"}`,
			result:     assistant.Result{Text: fallback.TroubleConnecting, Outcome: assistant.OutcomeTransportError, Err: errors.New("timeout")},
			wantStatus: http.StatusOK,
			wantCalls:  1,
			wantBody:   "trouble connecting",
		},
		{
			name:       "blank prompt",
			body:       `{"prompt":"   "}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing prompt",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid json",
			body:       `{"prompt":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "too long",
			body:       `{"prompt":"` + strings.Repeat("a", MaxPromptLength+1) + `"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asker := &fakeAsker{result: tt.result}
			r := newAssistantRouter(NewAssistantHandler(asker, nil, nil))

			req := httptest.NewRequest(http.MethodPost, "/api/assistant/ask", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if got := len(asker.Calls()); got != tt.wantCalls {
				t.Errorf("assistant calls = %d, want %d", got, tt.wantCalls)
			}
			if tt.wantBody != "" && !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("body %s does not contain %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestAssistantHandler_Ask_UsesChatChannel(t *testing.T) {
	asker := &fakeAsker{result: assistant.Result{Text: "ok", Outcome: assistant.OutcomeRemote}}
	r := newAssistantRouter(NewAssistantHandler(asker, nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/assistant/ask", strings.NewReader(`{"prompt":"random unrelated text"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	calls := asker.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected one call, got %d", len(calls))
	}
	if calls[0].channel != assistant.ChannelChat || calls[0].prompt != "random unrelated text" {
		t.Errorf("unexpected call %+v", calls[0])
	}

	var resp AskResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Response != "ok" || resp.Fallback {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestAssistantHandler_History(t *testing.T) {
	items := []db.Interaction{
		{ID: "1", Channel: "chat", Prompt: "kisan", Response: "r", Outcome: "remote", CreatedAt: time.Now()},
	}

	tests := []struct {
		name        string
		store       HistoryStore
		query       string
		wantStatus  int
		wantLimit   int
		wantChannel string
	}{
		{name: "disabled", store: nil, wantStatus: http.StatusNotFound},
		{name: "default limit", store: &fakeHistory{items: items}, wantStatus: http.StatusOK, wantLimit: 20},
		{name: "channel and limit", store: &fakeHistory{items: items}, query: "?channel=voice&limit=5", wantStatus: http.StatusOK, wantLimit: 5, wantChannel: "voice"},
		{name: "bad limit", store: &fakeHistory{}, query: "?limit=abc", wantStatus: http.StatusBadRequest},
		{name: "unknown channel", store: &fakeHistory{}, query: "?channel=sms", wantStatus: http.StatusBadRequest},
		{name: "store error", store: &fakeHistory{err: errors.New("db down")}, wantStatus: http.StatusInternalServerError, wantLimit: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newAssistantRouter(NewAssistantHandler(&fakeAsker{}, tt.store, nil))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/assistant/history"+tt.query, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if fh, ok := tt.store.(*fakeHistory); ok && tt.wantLimit != 0 {
				if fh.lastLimit != tt.wantLimit || fh.lastChannel != tt.wantChannel {
					t.Errorf("store called with (%q, %d), want (%q, %d)", fh.lastChannel, fh.lastLimit, tt.wantChannel, tt.wantLimit)
				}
			}
		})
	}
}

func TestAssistantHandler_Languages(t *testing.T) {
	r := newAssistantRouter(NewAssistantHandler(&fakeAsker{}, nil, language.NewManager()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/languages", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body struct {
		Default   string                  `json:"default"`
		Languages []language.LanguageInfo `json:"languages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Default != "en" || len(body.Languages) != 6 {
		t.Errorf("unexpected languages response: %+v", body)
	}
}
