package emailparse

import (
	"regexp"
	"strings"
)

// Coach hint patterns, most specific first. The last pattern is
// case-sensitive on purpose: it catches camel-joined "CoachAmber".
var coachHintPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Who:\s*Coach\s*([A-Za-z]+)`),
	regexp.MustCompile(`(?i)with\s+Coach\s*([A-Za-z\s]+?)\b`),
	regexp.MustCompile(`(?i)\bwith\s+([A-Za-z\s]+?)\s+for\b`),
	regexp.MustCompile(`(?i)\bCoach\s+([A-Za-z]+)\b`),
	regexp.MustCompile(`\bCoach([A-Z][a-z]+)\b`),
}

var (
	trailingForRe = regexp.MustCompile(`(?i)\s+for\b.*$`)
	nonLetterRe   = regexp.MustCompile(`[^\p{L}\s]+`)
)

// CleanCoachHint strips a trailing "for ..." clause and non-letter noise from
// a raw coach hint. Empty input returns empty.
func CleanCoachHint(raw string) string {
	if raw == "" {
		return ""
	}
	s := trailingForRe.ReplaceAllString(raw, "")
	s = nonLetterRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ExtractCoachHint pulls a free-text coach reference from the email. The body
// is searched before the HTML and the subject. Empty means no hint was found,
// which is not an error: cancellations may proceed without a coach.
func ExtractCoachHint(subject, text, html string) string {
	return CleanCoachHint(firstMatch([]string{text, html, subject}, coachHintPatterns))
}
