package assistant

import (
	"time"

	"github.com/jansevak/jansevak-be/internal/classifier"
)

// Outcome tags how an answer was produced
type Outcome string

const (
	OutcomeRemote         Outcome = "remote"          // completion service answered
	OutcomeNoCredential   Outcome = "no_credential"   // fallback-only mode, keyword responder
	OutcomeEmptyResponse  Outcome = "empty_response"  // service answered without usable text
	OutcomeTransportError Outcome = "transport_error" // network, quota, decode or open circuit
)

// Result is the tagged outcome of a single prompt. Text is always non-empty.
type Result struct {
	Text    string
	Outcome Outcome
	Topic   classifier.Topic // set for OutcomeNoCredential
	Err     error            // set for OutcomeTransportError
	Latency time.Duration
}

// IsFallback reports whether Text is a canned answer rather than model output
func (r Result) IsFallback() bool {
	return r.Outcome != OutcomeRemote
}

// Mode is the lifecycle state of the client handle
type Mode int32

const (
	ModeUninitialized Mode = iota
	ModeRemote
	ModeFallbackOnly
)

func (m Mode) String() string {
	switch m {
	case ModeUninitialized:
		return "uninitialized"
	case ModeRemote:
		return "remote"
	case ModeFallbackOnly:
		return "fallback_only"
	default:
		return "unknown"
	}
}
