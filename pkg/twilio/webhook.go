package twilio

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Config holds Twilio Voice configuration
type Config struct {
	AccountSID  string
	AuthToken   string
	PhoneNumber string
}

// Enabled reports whether enough is configured to answer calls
func (c Config) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != ""
}

// Validator checks X-Twilio-Signature headers
type Validator struct {
	authToken string
}

// NewValidator creates a signature validator for an auth token
func NewValidator(authToken string) *Validator {
	return &Validator{authToken: authToken}
}

// Signature computes the expected signature for a webhook URL and its POST form
func (v *Validator) Signature(fullURL string, form url.Values) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	data.WriteString(fullURL)
	for _, k := range keys {
		for _, val := range form[k] {
			data.WriteString(k)
			data.WriteString(val)
		}
	}

	mac := hmac.New(sha1.New, []byte(v.authToken))
	mac.Write([]byte(data.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Validate reports whether signature matches the request
func (v *Validator) Validate(fullURL string, form url.Values, signature string) bool {
	if signature == "" {
		return false
	}
	expected := v.Signature(fullURL, form)
	return hmac.Equal([]byte(signature), []byte(expected))
}

// CallStatus represents the status of a Twilio call
type CallStatus string

const (
	CallStatusQueued     CallStatus = "queued"
	CallStatusRinging    CallStatus = "ringing"
	CallStatusInProgress CallStatus = "in-progress"
	CallStatusCompleted  CallStatus = "completed"
	CallStatusBusy       CallStatus = "busy"
	CallStatusFailed     CallStatus = "failed"
	CallStatusNoAnswer   CallStatus = "no-answer"
	CallStatusCanceled   CallStatus = "canceled"
)

// Terminal reports whether no further webhooks will arrive for the call
func (s CallStatus) Terminal() bool {
	switch s {
	case CallStatusCompleted, CallStatusBusy, CallStatusFailed, CallStatusNoAnswer, CallStatusCanceled:
		return true
	}
	return false
}

// CallParams are the fields Twilio posts on every voice webhook
type CallParams struct {
	CallSid      string
	From         string
	To           string
	CallStatus   CallStatus
	Direction    string
	CallDuration int
}

// GatherParams are the fields posted after a speech Gather
type GatherParams struct {
	CallSid      string
	SpeechResult string
	Confidence   float64
	Language     string
}

// ParseCall parses a voice webhook form
func ParseCall(values url.Values) CallParams {
	duration, _ := strconv.Atoi(values.Get("CallDuration"))
	return CallParams{
		CallSid:      values.Get("CallSid"),
		From:         values.Get("From"),
		To:           values.Get("To"),
		CallStatus:   CallStatus(values.Get("CallStatus")),
		Direction:    values.Get("Direction"),
		CallDuration: duration,
	}
}

// ParseGather parses a Gather callback form
func ParseGather(values url.Values) GatherParams {
	confidence, _ := strconv.ParseFloat(values.Get("Confidence"), 64)
	return GatherParams{
		CallSid:      values.Get("CallSid"),
		SpeechResult: strings.TrimSpace(values.Get("SpeechResult")),
		Confidence:   confidence,
		Language:     values.Get("Language"),
	}
}
