package fallback

import (
	"context"
	"fmt"
	"time"

	"github.com/jansevak/jansevak-be/internal/classifier"
)

// Fixed messages returned when a configured completion service cannot help.
const (
	CouldNotProcess   = "I'm sorry, I couldn't process that request right now."
	TroubleConnecting = "I'm currently having trouble connecting to the server. Please try again later."
)

// DefaultDelay mimics the latency of a real completion call
const DefaultDelay = 1500 * time.Millisecond

// Response represents a canned answer
type Response struct {
	Content string
	Topic   classifier.Topic
}

var topicAnswers = map[classifier.Topic]string{
	classifier.TopicFarmer:      "The PM Kisan Samman Nidhi Yojana provides ₹6,000 annually to eligible farmer families. You can apply using your Aadhaar card and land records.",
	classifier.TopicScholarship: "For students, the PM Scholarship Scheme offers up to ₹50,000 per year. Applications are currently open for the academic year 2024-25.",
	classifier.TopicHealth:      "Ayushman Bharat offers health coverage up to ₹5 Lakhs per family per year for secondary and tertiary care hospitalization.",
}

// generalTemplate echoes the prompt verbatim
const generalTemplate = `I can help you with "%s". Based on your profile (Rajesh, Maharashtra), you might be eligible for the PM Awas Yojana. Would you like to check the documents required?`

// TopicClassifier picks the topic of a prompt
type TopicClassifier interface {
	Classify(prompt string) classifier.Result
}

// Responder produces deterministic answers without a completion service
type Responder struct {
	classifier TopicClassifier
	delay      time.Duration
}

// NewResponder creates a responder. A zero delay answers immediately.
func NewResponder(cls TopicClassifier, delay time.Duration) *Responder {
	if cls == nil {
		cls = classifier.NewClassifier()
	}
	if delay < 0 {
		delay = 0
	}
	return &Responder{classifier: cls, delay: delay}
}

// Respond returns the canned answer for the prompt's topic
func (r *Responder) Respond(prompt string) Response {
	result := r.classifier.Classify(prompt)
	return GetTopicResponse(result.Topic, prompt)
}

// RespondAfterDelay waits out the simulated latency, then answers. A
// cancelled context cuts the wait short but still yields the answer.
func (r *Responder) RespondAfterDelay(ctx context.Context, prompt string) Response {
	if r.delay > 0 {
		timer := time.NewTimer(r.delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}
	return r.Respond(prompt)
}

// Delay returns the configured simulated latency
func (r *Responder) Delay() time.Duration {
	return r.delay
}

// GetTopicResponse returns the answer for a topic; unknown topics get the
// general template with the prompt echoed back.
func GetTopicResponse(topic classifier.Topic, prompt string) Response {
	if content, ok := topicAnswers[topic]; ok {
		return Response{Content: content, Topic: topic}
	}
	return Response{
		Content: fmt.Sprintf(generalTemplate, prompt),
		Topic:   classifier.TopicGeneral,
	}
}
