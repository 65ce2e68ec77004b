package language

import (
	"sort"
	"strings"
	"sync"
)

const DefaultLanguage = "en"

// LanguageInfo contains information about a supported assistant language
type LanguageInfo struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
	IsEnabled  bool   `json:"is_enabled"`

	// SpeechLocale is the BCP-47 tag used for speech recognition and synthesis.
	SpeechLocale string `json:"speech_locale"`
	// Voice is the Twilio <Say> voice; empty means the carrier default.
	Voice string `json:"voice,omitempty"`
}

// ValidationResult represents the result of language validation
type ValidationResult struct {
	Code         string `json:"code"`
	UsedFallback bool   `json:"used_fallback"`
}

// Manager handles language support and validation
type Manager struct {
	languages map[string]*LanguageInfo
	mu        sync.RWMutex
}

// NewManager creates a new language manager with the portal's languages
func NewManager() *Manager {
	m := &Manager{languages: make(map[string]*LanguageInfo)}
	for _, info := range defaultLanguages() {
		info := info
		m.languages[info.Code] = &info
	}
	return m
}

func defaultLanguages() []LanguageInfo {
	return []LanguageInfo{
		{Code: "en", Name: "English", NativeName: "English", IsEnabled: true, SpeechLocale: "en-IN", Voice: "Polly.Aditi"},
		{Code: "hi", Name: "Hindi", NativeName: "हिन्दी", IsEnabled: true, SpeechLocale: "hi-IN", Voice: "Polly.Aditi"},
		{Code: "mr", Name: "Marathi", NativeName: "मराठी", IsEnabled: true, SpeechLocale: "mr-IN", Voice: "Google.mr-IN-Standard-A"},
		{Code: "ta", Name: "Tamil", NativeName: "தமிழ்", IsEnabled: true, SpeechLocale: "ta-IN", Voice: "Google.ta-IN-Standard-A"},
		{Code: "te", Name: "Telugu", NativeName: "తెలుగు", IsEnabled: true, SpeechLocale: "te-IN", Voice: "Google.te-IN-Standard-A"},
		{Code: "bn", Name: "Bengali", NativeName: "বাংলা", IsEnabled: true, SpeechLocale: "bn-IN", Voice: "Google.bn-IN-Standard-A"},
	}
}

// Normalize reduces "hi-IN", "HI" or " hi " to "hi"
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	return code
}

// IsSupported checks if a language code is supported and enabled
func (m *Manager) IsSupported(code string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lang, exists := m.languages[Normalize(code)]
	return exists && lang.IsEnabled
}

// Validate validates a language code and returns the validated code
// If the language is not supported, it falls back to the default language
func (m *Manager) Validate(code string) ValidationResult {
	if m.IsSupported(code) {
		return ValidationResult{
			Code:         Normalize(code),
			UsedFallback: false,
		}
	}

	return ValidationResult{
		Code:         DefaultLanguage,
		UsedFallback: true,
	}
}

// GetLanguageInfo returns information about a language
func (m *Manager) GetLanguageInfo(code string) (LanguageInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lang, exists := m.languages[Normalize(code)]
	if !exists {
		return LanguageInfo{}, false
	}

	return *lang, true
}

// Speech returns the speech locale and voice for a code, falling back to the default language
func (m *Manager) Speech(code string) (locale, voice string) {
	info, _ := m.GetLanguageInfo(m.Validate(code).Code)
	return info.SpeechLocale, info.Voice
}

// EnableLanguage enables a language
func (m *Manager) EnableLanguage(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if lang, exists := m.languages[Normalize(code)]; exists {
		lang.IsEnabled = true
	}
}

// DisableLanguage disables a language (cannot disable default language)
func (m *Manager) DisableLanguage(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	code = Normalize(code)
	if code == DefaultLanguage {
		return
	}

	if lang, exists := m.languages[code]; exists {
		lang.IsEnabled = false
	}
}

// GetSupportedLanguages returns all enabled languages ordered by code, default first
func (m *Manager) GetSupportedLanguages() []LanguageInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	languages := make([]LanguageInfo, 0, len(m.languages))
	for _, lang := range m.languages {
		if lang.IsEnabled {
			languages = append(languages, *lang)
		}
	}

	sort.Slice(languages, func(i, j int) bool {
		if languages[i].Code == DefaultLanguage {
			return true
		}
		if languages[j].Code == DefaultLanguage {
			return false
		}
		return languages[i].Code < languages[j].Code
	})

	return languages
}
