package assistant

import (
	"os"
	"strings"
	"time"

	"github.com/jansevak/jansevak-be/pkg/deepseek"
	"github.com/jansevak/jansevak-be/pkg/gemini"
	"github.com/jansevak/jansevak-be/pkg/llm"
)

// Supported completion providers
const (
	ProviderGemini   = "gemini"
	ProviderDeepSeek = "deepseek"
)

// ProviderConfig selects and tunes the completion provider
type ProviderConfig struct {
	Provider string        // "gemini" (default) or "deepseek"
	Model    string        // provider default when empty
	BaseURL  string        // provider default when empty
	Timeout  time.Duration // provider default when zero
}

// EnvCredential reads the credential from the environment when first asked
func EnvCredential(key string) CredentialSource {
	return func() string {
		return os.Getenv(key)
	}
}

// CredentialKey returns the environment variable holding the provider's key
func CredentialKey(provider string) string {
	if normalizeProvider(provider) == ProviderDeepSeek {
		return "DEEPSEEK_API_KEY"
	}
	return "GEMINI_API_KEY"
}

// NewClientFactory returns a factory for the configured provider
func NewClientFactory(cfg ProviderConfig) ClientFactory {
	switch normalizeProvider(cfg.Provider) {
	case ProviderDeepSeek:
		return func(credential string) llm.Client {
			return deepseek.NewHTTPClient(deepseek.Config{
				APIKey:  credential,
				BaseURL: cfg.BaseURL,
				Model:   cfg.Model,
				Timeout: cfg.Timeout,
			})
		}
	default:
		return func(credential string) llm.Client {
			return gemini.NewHTTPClient(gemini.Config{
				APIKey:  credential,
				BaseURL: cfg.BaseURL,
				Model:   cfg.Model,
				Timeout: cfg.Timeout,
			})
		}
	}
}

func normalizeProvider(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == ProviderDeepSeek {
		return ProviderDeepSeek
	}
	return ProviderGemini
}
