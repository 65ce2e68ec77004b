package assistant

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jansevak/jansevak-be/internal/privacy"
)

// Channel names the surface a prompt arrived on
type Channel string

const (
	ChannelChat  Channel = "chat"  // REST chatbot
	ChannelWS    Channel = "ws"    // floating chatbot over WebSocket
	ChannelVoice Channel = "voice" // phone voice assistant
)

// Interaction is one answered prompt, ready for metrics or persistence.
// Prompt is redacted.
type Interaction struct {
	ID        string
	Channel   Channel
	Prompt    string
	Response  string
	Outcome   Outcome
	Latency   time.Duration
	CreatedAt time.Time
}

// Recorder observes answered prompts
type Recorder interface {
	RecordInteraction(ctx context.Context, in Interaction) error
}

// Ask answers the prompt and reports the interaction to every recorder.
// Recorder failures are logged and never change the answer.
func (s *Service) Ask(ctx context.Context, channel Channel, userPrompt string) Result {
	res := s.Answer(ctx, userPrompt)

	if len(s.recorders) == 0 {
		return res
	}

	in := Interaction{
		ID:        uuid.NewString(),
		Channel:   channel,
		Prompt:    privacy.SanitizeForLogging(userPrompt),
		Response:  privacy.RedactSensitiveData(res.Text),
		Outcome:   res.Outcome,
		Latency:   res.Latency,
		CreatedAt: time.Now().UTC(),
	}

	// The caller may already be gone; the record should still land.
	recCtx := context.WithoutCancel(ctx)
	for _, r := range s.recorders {
		if err := r.RecordInteraction(recCtx, in); err != nil {
			log.Printf("Failed to record interaction %s: %v", in.ID, err)
		}
	}

	return res
}
