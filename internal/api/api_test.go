package api

import (
	"context"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/jansevak/jansevak-be/internal/assistant"
	"github.com/jansevak/jansevak-be/internal/db"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type askCall struct {
	channel assistant.Channel
	prompt  string
}

type fakeAsker struct {
	mu     sync.Mutex
	calls  []askCall
	result assistant.Result
}

func (f *fakeAsker) Ask(_ context.Context, channel assistant.Channel, prompt string) assistant.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, askCall{channel: channel, prompt: prompt})
	return f.result
}

func (f *fakeAsker) Calls() []askCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]askCall(nil), f.calls...)
}

type fakeHistory struct {
	items       []db.Interaction
	err         error
	lastChannel string
	lastLimit   int
}

func (f *fakeHistory) RecentInteractions(_ context.Context, channel string, limit int) ([]db.Interaction, error) {
	f.lastChannel = channel
	f.lastLimit = limit
	return f.items, f.err
}
