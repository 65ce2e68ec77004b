package privacy

import (
	"strings"
	"testing"
)

func TestRedactSensitiveData(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "email redaction",
			input:    "My email is rajesh.patil@example.com",
			expected: "My email is [EMAIL]",
		},
		{
			name:     "aadhaar grouped",
			input:    "Aadhaar 2345 6789 0123 please",
			expected: "Aadhaar [AADHAAR] please",
		},
		{
			name:     "aadhaar plain",
			input:    "my aadhaar is 234567890123",
			expected: "my aadhaar is [AADHAAR]",
		},
		{
			name:     "mobile with country code",
			input:    "Call me at +91 98765 43210",
			expected: "Call me at [PHONE]",
		},
		{
			name:     "mobile plain",
			input:    "number 9876543210",
			expected: "number [PHONE]",
		},
		{
			name:     "PAN",
			input:    "PAN ABCDE1234F attached",
			expected: "PAN [PAN] attached",
		},
		{
			name:     "IFSC and account",
			input:    "IFSC SBIN0001234 account 001234567890123",
			expected: "IFSC [IFSC] account [ACCOUNT]",
		},
		{
			name:     "no PII",
			input:    "PM Kisan pays ₹6,000 in 3 installments for 2024",
			expected: "PM Kisan pays ₹6,000 in 3 installments for 2024",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RedactSensitiveData(tt.input)
			if result != tt.expected {
				t.Errorf("got %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestContainsPII(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "email", input: "reach me at a@b.in", expected: true},
		{name: "aadhaar", input: "2345-6789-0123", expected: true},
		{name: "pan", input: "abcde1234f", expected: true},
		{name: "scheme question", input: "Tell me about Kisan Yojana", expected: false},
		{name: "amounts", input: "₹50,000 per year", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsPII(tt.input); got != tt.expected {
				t.Errorf("ContainsPII(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeForLogging(t *testing.T) {
	long := strings.Repeat("योजना ", 60)

	got := SanitizeForLogging(long)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected truncation, got %q", got)
	}
	if n := len([]rune(got)); n != 200 {
		t.Errorf("got %d runes, want 200", n)
	}

	if got := SanitizeForLogging("short text"); got != "short text" {
		t.Errorf("got %q, want unchanged", got)
	}
}
