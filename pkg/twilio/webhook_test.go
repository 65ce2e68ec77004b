package twilio

import (
	"net/url"
	"testing"
)

func TestValidator(t *testing.T) {
	v := NewValidator("12345")
	fullURL := "https://example.in/api/voice/incoming"
	form := url.Values{
		"CallSid": []string{"CA123"},
		"From":    []string{"+919876543210"},
	}

	sig := v.Signature(fullURL, form)
	if sig == "" {
		t.Fatal("empty signature")
	}

	tests := []struct {
		name      string
		url       string
		form      url.Values
		signature string
		want      bool
	}{
		{name: "valid", url: fullURL, form: form, signature: sig, want: true},
		{name: "missing signature", url: fullURL, form: form, signature: "", want: false},
		{name: "tampered form", url: fullURL, form: url.Values{"CallSid": []string{"CA999"}, "From": []string{"+919876543210"}}, signature: sig, want: false},
		{name: "different url", url: "https://evil.example/api/voice/incoming", form: form, signature: sig, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.Validate(tt.url, tt.form, tt.signature); got != tt.want {
				t.Errorf("Validate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_Enabled(t *testing.T) {
	if (Config{}).Enabled() {
		t.Error("empty config should be disabled")
	}
	if !(Config{AccountSID: "AC1", AuthToken: "tok"}).Enabled() {
		t.Error("config with sid and token should be enabled")
	}
}

func TestParseCall(t *testing.T) {
	values := url.Values{
		"CallSid":      []string{"CA123"},
		"From":         []string{"+919876543210"},
		"To":           []string{"+911800111555"},
		"CallStatus":   []string{"completed"},
		"CallDuration": []string{"42"},
	}

	params := ParseCall(values)

	if params.CallSid != "CA123" {
		t.Errorf("got CallSid %s, want CA123", params.CallSid)
	}
	if params.CallStatus != CallStatusCompleted || !params.CallStatus.Terminal() {
		t.Errorf("got CallStatus %s, want terminal completed", params.CallStatus)
	}
	if params.CallDuration != 42 {
		t.Errorf("got CallDuration %d, want 42", params.CallDuration)
	}
	if CallStatusInProgress.Terminal() {
		t.Error("in-progress should not be terminal")
	}
}

func TestParseGather(t *testing.T) {
	values := url.Values{
		"CallSid":      []string{"CA123"},
		"SpeechResult": []string{"  Tell me about kisan scheme "},
		"Confidence":   []string{"0.91"},
	}

	params := ParseGather(values)

	if params.SpeechResult != "Tell me about kisan scheme" {
		t.Errorf("got SpeechResult %q", params.SpeechResult)
	}
	if params.Confidence != 0.91 {
		t.Errorf("got Confidence %v, want 0.91", params.Confidence)
	}
}
