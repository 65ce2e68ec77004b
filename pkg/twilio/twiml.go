package twilio

import (
	"fmt"
	"strings"
)

const (
	DefaultVoice    = "Polly.Aditi"
	DefaultLanguage = "en-IN"
)

// Response builds a TwiML document verb by verb
type Response struct {
	b strings.Builder
}

// NewResponse starts a TwiML document
func NewResponse() *Response {
	r := &Response{}
	r.b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><Response>`)
	return r
}

// Say speaks text with the given voice and locale
func (r *Response) Say(text, voice, language string) *Response {
	if voice == "" {
		voice = DefaultVoice
	}
	if language == "" {
		language = DefaultLanguage
	}
	fmt.Fprintf(&r.b, `<Say voice="%s" language="%s">%s</Say>`,
		escapeXML(voice), escapeXML(language), escapeXML(text))
	return r
}

// GatherOptions configures a speech Gather
type GatherOptions struct {
	Action   string
	Language string
	Timeout  int
	Hints    []string
}

// Gather opens a speech Gather; close it with EndGather
func (r *Response) Gather(opts GatherOptions) *Response {
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5
	}

	fmt.Fprintf(&r.b, `<Gather input="speech" action="%s" method="POST" language="%s" timeout="%d" speechTimeout="auto"`,
		escapeXML(opts.Action), escapeXML(opts.Language), opts.Timeout)
	if len(opts.Hints) > 0 {
		fmt.Fprintf(&r.b, ` hints="%s"`, escapeXML(strings.Join(opts.Hints, ",")))
	}
	r.b.WriteString(`>`)
	return r
}

// EndGather closes a Gather verb
func (r *Response) EndGather() *Response {
	r.b.WriteString(`</Gather>`)
	return r
}

// Redirect continues the call at another webhook
func (r *Response) Redirect(url string) *Response {
	fmt.Fprintf(&r.b, `<Redirect method="POST">%s</Redirect>`, escapeXML(url))
	return r
}

// Pause adds silence
func (r *Response) Pause(seconds int) *Response {
	if seconds <= 0 {
		seconds = 1
	}
	fmt.Fprintf(&r.b, `<Pause length="%d"/>`, seconds)
	return r
}

// Hangup ends the call
func (r *Response) Hangup() *Response {
	r.b.WriteString(`<Hangup/>`)
	return r
}

// String returns the complete TwiML XML
func (r *Response) String() string {
	return r.b.String() + `</Response>`
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
