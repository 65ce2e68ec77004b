package api

import (
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jansevak/jansevak-be/internal/assistant"
	"github.com/jansevak/jansevak-be/internal/language"
	"github.com/jansevak/jansevak-be/internal/privacy"
	"github.com/jansevak/jansevak-be/pkg/twilio"
)

// MaxVoiceTurns bounds the questions answered in one call
const MaxVoiceTurns = 10

// MaxCallAge is how long a session is kept when no terminal status arrives
const MaxCallAge = time.Hour

var speechHints = []string{"kisan", "PM-KISAN", "scholarship", "ayushman", "awas yojana", "pension", "ration card"}

// VoiceHandler answers phone calls with the assistant through Twilio webhooks
type VoiceHandler struct {
	assistant     Asker
	languages     *language.Manager
	validator     *twilio.Validator
	publicBaseURL string
	sessions      sync.Map // CallSid -> *VoiceSession
}

// VoiceSession stores data for an active call
type VoiceSession struct {
	CallSid   string
	From      string
	Language  string
	StartedAt time.Time

	mu    sync.Mutex
	turns int
}

// nextTurn counts a question and reports whether the call may continue
func (s *VoiceSession) nextTurn() (turn int, more bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns++
	return s.turns, s.turns < MaxVoiceTurns
}

// NewVoiceHandler creates a voice handler. A nil validator skips signature checks.
// With an empty publicBaseURL signatures are checked against the URL the request arrived on.
func NewVoiceHandler(a Asker, languages *language.Manager, validator *twilio.Validator, publicBaseURL string) *VoiceHandler {
	if languages == nil {
		languages = language.NewManager()
	}
	return &VoiceHandler{
		assistant:     a,
		languages:     languages,
		validator:     validator,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// VerifySignature rejects webhooks not signed with the account's auth token
func (h *VoiceHandler) VerifySignature() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.validator == nil {
			c.Next()
			return
		}

		if err := c.Request.ParseForm(); err != nil {
			c.String(http.StatusBadRequest, "Invalid request")
			c.Abort()
			return
		}

		fullURL := h.baseURL(c.Request) + c.Request.URL.RequestURI()
		if !h.validator.Validate(fullURL, c.Request.PostForm, c.GetHeader("X-Twilio-Signature")) {
			log.Printf("Rejected voice webhook with bad signature: %s", c.Request.URL.Path)
			c.String(http.StatusForbidden, "Invalid signature")
			c.Abort()
			return
		}

		c.Next()
	}
}

// baseURL is the scheme and host Twilio was configured to call
func (h *VoiceHandler) baseURL(r *http.Request) string {
	if h.publicBaseURL != "" {
		return h.publicBaseURL
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return scheme + "://" + host
}

// HandleIncoming greets the caller and opens the first speech gather
func (h *VoiceHandler) HandleIncoming(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		log.Printf("Failed to parse form: %v", err)
		c.String(http.StatusBadRequest, "Invalid request")
		return
	}

	call := twilio.ParseCall(c.Request.PostForm)
	lang := h.languages.Validate(c.Query("lang")).Code

	session := &VoiceSession{
		CallSid:   call.CallSid,
		From:      privacy.SanitizeForLogging(call.From),
		Language:  lang,
		StartedAt: time.Now(),
	}
	if call.CallSid != "" {
		h.sessions.Store(call.CallSid, session)
	}

	log.Printf("Incoming call: CallSid=%s, From=%s, Language=%s", call.CallSid, session.From, lang)

	locale, voice := h.speech(lang)
	twiml := twilio.NewResponse().
		Say(phrase(lang, phraseGreeting), voice, locale).
		Gather(h.gatherOptions(lang)).
		Say(phrase(lang, phraseAsk), voice, locale).
		EndGather().
		Say(phrase(lang, phraseNoInput), voice, locale).
		Hangup().
		String()

	writeTwiML(c, twiml)
}

// HandleGather answers one spoken question and listens for the next
func (h *VoiceHandler) HandleGather(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		log.Printf("Failed to parse form: %v", err)
		c.String(http.StatusBadRequest, "Invalid request")
		return
	}

	gather := twilio.ParseGather(c.Request.PostForm)
	lang := h.languages.Validate(c.Query("lang")).Code

	session := h.session(gather.CallSid, lang)
	locale, voice := h.speech(session.Language)

	if gather.SpeechResult == "" {
		twiml := twilio.NewResponse().
			Say(phrase(session.Language, phraseRetry), voice, locale).
			Gather(h.gatherOptions(session.Language)).
			EndGather().
			Say(phrase(session.Language, phraseGoodbye), voice, locale).
			Hangup().
			String()
		writeTwiML(c, twiml)
		return
	}

	turn, more := session.nextTurn()
	log.Printf("Voice question: CallSid=%s, Turn=%d, Speech=%s",
		gather.CallSid, turn, privacy.SanitizeForLogging(gather.SpeechResult))

	res := h.assistant.Ask(c.Request.Context(), assistant.ChannelVoice, gather.SpeechResult)

	// Canned answers and model output are English text
	answerLocale, answerVoice := h.speech(language.DefaultLanguage)
	resp := twilio.NewResponse().Say(res.Text, answerVoice, answerLocale)
	if more {
		resp.Gather(h.gatherOptions(session.Language)).
			Say(phrase(session.Language, phraseContinue), voice, locale).
			EndGather()
	}
	resp.Say(phrase(session.Language, phraseGoodbye), voice, locale).Hangup()

	writeTwiML(c, resp.String())
}

// HandleStatus drops the session once the call has ended
func (h *VoiceHandler) HandleStatus(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		log.Printf("Failed to parse form: %v", err)
		c.String(http.StatusBadRequest, "Invalid request")
		return
	}

	call := twilio.ParseCall(c.Request.PostForm)
	log.Printf("Call status: CallSid=%s, Status=%s, Duration=%ds", call.CallSid, call.CallStatus, call.CallDuration)

	if call.CallStatus.Terminal() {
		h.sessions.Delete(call.CallSid)
	}

	c.String(http.StatusOK, "OK")
}

// ActiveCalls returns the number of calls with a live session
func (h *VoiceHandler) ActiveCalls() int {
	n := 0
	h.sessions.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Sweep drops sessions older than MaxCallAge
func (h *VoiceHandler) Sweep(now time.Time) {
	h.sessions.Range(func(key, value any) bool {
		if now.Sub(value.(*VoiceSession).StartedAt) > MaxCallAge {
			h.sessions.Delete(key)
		}
		return true
	})
}

// Run sweeps stale sessions until stop is closed
func (h *VoiceHandler) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(MaxCallAge / 4)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			h.Sweep(now)
		}
	}
}

func (h *VoiceHandler) session(callSid, lang string) *VoiceSession {
	if v, ok := h.sessions.Load(callSid); ok {
		return v.(*VoiceSession)
	}
	// Sessions do not survive restarts; keep answering with what the webhook tells us.
	s := &VoiceSession{CallSid: callSid, Language: lang, StartedAt: time.Now()}
	if callSid != "" {
		actual, _ := h.sessions.LoadOrStore(callSid, s)
		return actual.(*VoiceSession)
	}
	return s
}

// speech picks the voice for prompts in lang; languages without phrases are spoken in English
func (h *VoiceHandler) speech(lang string) (locale, voice string) {
	if _, ok := phrases[lang]; !ok {
		lang = language.DefaultLanguage
	}
	return h.languages.Speech(lang)
}

func (h *VoiceHandler) gatherOptions(lang string) twilio.GatherOptions {
	locale, _ := h.languages.Speech(lang)
	return twilio.GatherOptions{
		Action:   "/api/voice/gather?lang=" + url.QueryEscape(lang),
		Language: locale,
		Timeout:  5,
		Hints:    speechHints,
	}
}

func writeTwiML(c *gin.Context, twiml string) {
	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(twiml))
}

type phraseKey int

const (
	phraseGreeting phraseKey = iota
	phraseAsk
	phraseContinue
	phraseRetry
	phraseNoInput
	phraseGoodbye
)

var phrases = map[string]map[phraseKey]string{
	"en": {
		phraseGreeting: "Namaste! Welcome to Jansevak, your government welfare scheme assistant.",
		phraseAsk:      "Please ask your question after the beep, for example about PM Kisan, scholarships or Ayushman Bharat.",
		phraseContinue: "Do you have another question?",
		phraseRetry:    "Sorry, I didn't catch that. Please say your question again.",
		phraseNoInput:  "I didn't hear anything. Please call back when you are ready.",
		phraseGoodbye:  "Thank you for calling Jansevak. Dhanyavaad!",
	},
	"hi": {
		phraseGreeting: "नमस्ते! जनसेवक में आपका स्वागत है। मैं सरकारी योजनाओं में आपकी मदद करूँगी।",
		phraseAsk:      "कृपया अपना सवाल पूछिए, जैसे पीएम किसान, छात्रवृत्ति या आयुष्मान भारत के बारे में।",
		phraseContinue: "क्या आपका कोई और सवाल है?",
		phraseRetry:    "माफ़ कीजिए, मैं समझ नहीं पाई। कृपया फिर से बोलिए।",
		phraseNoInput:  "मुझे कुछ सुनाई नहीं दिया। तैयार होने पर दोबारा कॉल करें।",
		phraseGoodbye:  "जनसेवक को कॉल करने के लिए धन्यवाद!",
	},
}

func phrase(lang string, key phraseKey) string {
	if p, ok := phrases[lang]; ok {
		return p[key]
	}
	return phrases[language.DefaultLanguage][key]
}
