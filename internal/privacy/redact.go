package privacy

import (
	"regexp"
)

var (
	// Email pattern
	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// Aadhaar: 12 digits, first digit 2-9, optionally grouped 4-4-4
	aadhaarRegex = regexp.MustCompile(`\b[2-9]\d{3}[\s-]?\d{4}[\s-]?\d{4}\b`)

	// PAN: AAAAA9999A
	panRegex = regexp.MustCompile(`\b[A-Za-z]{5}\d{4}[A-Za-z]\b`)

	// IFSC: 4 letters, a zero, 6 alphanumerics
	ifscRegex = regexp.MustCompile(`\b[A-Za-z]{4}0[A-Za-z0-9]{6}\b`)

	// Indian mobile numbers, with or without +91 / 0 prefix
	// Matches: 9876543210, +91 98765 43210, 098765-43210
	phoneRegex = regexp.MustCompile(`(\+91[\s-]?|\b0)?\b[6-9]\d{4}[\s-]?\d{5}\b`)

	// Bank account numbers (9-18 digits) once the other numeric patterns are gone
	accountRegex = regexp.MustCompile(`\b\d{9,18}\b`)
)

// RedactSensitiveData removes PII from text. Order matters: Aadhaar and
// phone numbers are replaced before the generic account-number pattern.
func RedactSensitiveData(text string) string {
	text = emailRegex.ReplaceAllString(text, "[EMAIL]")
	text = aadhaarRegex.ReplaceAllString(text, "[AADHAAR]")
	text = phoneRegex.ReplaceAllString(text, "[PHONE]")
	text = panRegex.ReplaceAllString(text, "[PAN]")
	text = ifscRegex.ReplaceAllString(text, "[IFSC]")
	text = accountRegex.ReplaceAllString(text, "[ACCOUNT]")
	return text
}

// SanitizeForLogging prepares text for safe logging
func SanitizeForLogging(text string) string {
	redacted := RedactSensitiveData(text)

	runes := []rune(redacted)
	if len(runes) > 200 {
		return string(runes[:197]) + "..."
	}

	return redacted
}

// SanitizeForAPI removes PII before sending to external APIs
func SanitizeForAPI(text string) string {
	return RedactSensitiveData(text)
}

// ContainsPII checks if text contains potential PII
func ContainsPII(text string) bool {
	return emailRegex.MatchString(text) ||
		aadhaarRegex.MatchString(text) ||
		phoneRegex.MatchString(text) ||
		panRegex.MatchString(text) ||
		ifscRegex.MatchString(text) ||
		accountRegex.MatchString(text)
}
