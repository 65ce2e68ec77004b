package prompt

import (
	"strings"
	"testing"

	"github.com/jansevak/jansevak-be/pkg/llm"
)

func TestBuilder_BuildPrompt(t *testing.T) {
	b := NewBuilder()

	messages := b.BuildPrompt("Am I eligible for PM Awas Yojana?")

	if len(messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(messages))
	}
	if messages[0].Role != llm.RoleSystem {
		t.Errorf("first role = %q, want system", messages[0].Role)
	}
	if messages[1].Role != llm.RoleUser || messages[1].Content != "Am I eligible for PM Awas Yojana?" {
		t.Errorf("unexpected user message %+v", messages[1])
	}
}

func TestBuilder_SystemInstruction(t *testing.T) {
	tests := []struct {
		name     string
		persona  Persona
		contains []string
	}{
		{
			name:    "default persona",
			persona: Persona{},
			contains: []string{
				"You are Jansevak AI",
				"under 40 words",
				"Indian government schemes",
				"Address the user as Rajesh.",
			},
		},
		{
			name:    "custom persona",
			persona: Persona{AssistantName: "Sahayak", UserName: "Priya", WordLimit: 60},
			contains: []string{
				"You are Sahayak",
				"under 60 words",
				"Address the user as Priya.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instruction := NewBuilderWithPersona(tt.persona).SystemInstruction()
			for _, s := range tt.contains {
				if !strings.Contains(instruction, s) {
					t.Errorf("instruction %q missing %q", instruction, s)
				}
			}
		})
	}
}

func TestBuilder_InstructionIsFixed(t *testing.T) {
	b := NewBuilder()

	first := b.BuildPrompt("kisan")[0].Content
	second := b.BuildPrompt("something else entirely")[0].Content
	if first != second {
		t.Error("system instruction must not depend on the prompt")
	}
}
