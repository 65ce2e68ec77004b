package prompt

import (
	"fmt"
	"strings"

	"github.com/jansevak/jansevak-be/pkg/llm"
)

const (
	DefaultAssistantName = "Jansevak AI"
	DefaultUserName      = "Rajesh"
	DefaultWordLimit     = 40
)

// Persona configures the fixed system instruction
type Persona struct {
	AssistantName string
	UserName      string
	WordLimit     int
}

// Builder constructs the messages sent to the completion service
type Builder struct {
	instruction string
}

// NewBuilder creates a builder with the default persona
func NewBuilder() *Builder {
	return NewBuilderWithPersona(Persona{})
}

// NewBuilderWithPersona creates a builder; zero fields take the defaults.
// The instruction is rendered once and shared by every request.
func NewBuilderWithPersona(p Persona) *Builder {
	if p.AssistantName == "" {
		p.AssistantName = DefaultAssistantName
	}
	if p.UserName == "" {
		p.UserName = DefaultUserName
	}
	if p.WordLimit <= 0 {
		p.WordLimit = DefaultWordLimit
	}
	return &Builder{instruction: buildSystemInstruction(p)}
}

// SystemInstruction returns the fixed instruction sent with every prompt
func (b *Builder) SystemInstruction() string {
	return b.instruction
}

// BuildPrompt returns the system instruction followed by the user's prompt
func (b *Builder) BuildPrompt(userPrompt string) []llm.ChatMessage {
	return []llm.ChatMessage{
		{Role: llm.RoleSystem, Content: b.instruction},
		{Role: llm.RoleUser, Content: userPrompt},
	}
}

func buildSystemInstruction(p Persona) string {
	var sb strings.Builder
	sb.Grow(256)

	sb.WriteString(fmt.Sprintf("You are %s, a helpful Indian government welfare assistant. ", p.AssistantName))
	sb.WriteString(fmt.Sprintf("Keep answers short (under %d words), encouraging, and relevant to Indian government schemes. ", p.WordLimit))
	sb.WriteString(fmt.Sprintf("Address the user as %s.", p.UserName))

	return sb.String()
}
