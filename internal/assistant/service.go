package assistant

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jansevak/jansevak-be/internal/circuitbreaker"
	"github.com/jansevak/jansevak-be/internal/fallback"
	"github.com/jansevak/jansevak-be/internal/privacy"
	"github.com/jansevak/jansevak-be/internal/prompt"
	"github.com/jansevak/jansevak-be/pkg/llm"
)

// CredentialSource returns the completion service credential, or "" when
// none is configured. It is consulted once per Service.
type CredentialSource func() string

// ClientFactory builds the client handle from a credential
type ClientFactory func(credential string) llm.Client

// Config wires a Service. Only NewClient and Credential are needed for the
// remote path; everything else has a default.
type Config struct {
	Credential  CredentialSource
	NewClient   ClientFactory
	Prompts     *prompt.Builder
	Fallback    *fallback.Responder
	Breaker     *circuitbreaker.CircuitBreaker
	Recorders   []Recorder
	Temperature float64
	MaxTokens   int // 0 leaves the output length to the provider

	// RedactOutbound replaces PII-looking spans before the prompt leaves the
	// process. Off by default: the patterns also match years and reference numbers.
	RedactOutbound bool
}

// Service answers welfare-scheme prompts, remotely when a credential is
// configured and from canned keyword answers otherwise.
type Service struct {
	credential  CredentialSource
	newClient   ClientFactory
	prompts     *prompt.Builder
	fallback    *fallback.Responder
	breaker     *circuitbreaker.CircuitBreaker
	recorders   []Recorder
	temperature float64
	maxTokens   int
	redact      bool

	once   sync.Once
	client llm.Client
	mode   atomic.Int32
}

// New creates an uninitialized Service
func New(cfg Config) *Service {
	if cfg.Prompts == nil {
		cfg.Prompts = prompt.NewBuilder()
	}
	if cfg.Fallback == nil {
		cfg.Fallback = fallback.NewResponder(nil, fallback.DefaultDelay)
	}
	if cfg.Breaker == nil {
		cfg.Breaker = circuitbreaker.New(circuitbreaker.Config{})
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}

	return &Service{
		credential:  cfg.Credential,
		newClient:   cfg.NewClient,
		prompts:     cfg.Prompts,
		fallback:    cfg.Fallback,
		breaker:     cfg.Breaker,
		recorders:   cfg.Recorders,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		redact:      cfg.RedactOutbound,
	}
}

// Mode returns the current lifecycle state
func (s *Service) Mode() Mode {
	return Mode(s.mode.Load())
}

// getClient resolves the client handle on first use. A missing credential
// selects fallback-only mode for the lifetime of the Service.
func (s *Service) getClient() llm.Client {
	s.once.Do(func() {
		var credential string
		if s.credential != nil {
			credential = strings.TrimSpace(s.credential())
		}

		if credential != "" && s.newClient != nil {
			s.client = s.newClient(credential)
		}

		if s.client == nil {
			s.mode.Store(int32(ModeFallbackOnly))
			log.Printf("Warning: no completion credential configured, assistant runs in fallback-only mode")
			return
		}
		s.mode.Store(int32(ModeRemote))
		log.Printf("✅ Completion client initialized")
	})
	return s.client
}

// Generate returns the answer text. It never fails and never returns "".
func (s *Service) Generate(ctx context.Context, userPrompt string) string {
	return s.Answer(ctx, userPrompt).Text
}

// Answer produces a Result for the prompt, issuing at most one outbound call
func (s *Service) Answer(ctx context.Context, userPrompt string) Result {
	start := time.Now()

	client := s.getClient()
	if client == nil {
		log.Printf("Warning: no API key found, returning mock response")
		resp := s.fallback.RespondAfterDelay(ctx, userPrompt)
		return Result{
			Text:    resp.Content,
			Outcome: OutcomeNoCredential,
			Topic:   resp.Topic,
			Latency: time.Since(start),
		}
	}

	outbound := userPrompt
	if s.redact {
		outbound = privacy.SanitizeForAPI(userPrompt)
	}

	req := llm.ChatRequest{
		Messages:    s.prompts.BuildPrompt(outbound),
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	}

	var resp *llm.ChatResponse
	err := s.breaker.Call(func() error {
		var callErr error
		resp, callErr = callClient(ctx, client, req)
		if callErr != nil && ctx.Err() != nil {
			// caller went away, not the service
			return circuitbreaker.Abandoned(callErr)
		}
		return callErr
	})

	if err != nil {
		log.Printf("Completion API error: %v", err)
		return Result{
			Text:    fallback.TroubleConnecting,
			Outcome: OutcomeTransportError,
			Err:     err,
			Latency: time.Since(start),
		}
	}

	if !resp.HasText() {
		log.Printf("Completion API returned no text")
		return Result{
			Text:    fallback.CouldNotProcess,
			Outcome: OutcomeEmptyResponse,
			Latency: time.Since(start),
		}
	}

	return Result{
		Text:    resp.Text(),
		Outcome: OutcomeRemote,
		Latency: time.Since(start),
	}
}

// callClient turns a provider panic into an error so callers only ever see
// a Result.
func callClient(ctx context.Context, client llm.Client, req llm.ChatRequest) (resp *llm.ChatResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = fmt.Errorf("completion client panicked: %v", r)
		}
	}()
	return client.ChatCompletion(ctx, req)
}
