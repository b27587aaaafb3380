package emailparse

import (
	"regexp"
	"strings"
	"time"
)

// ChangeDetails is the result of parsing a reschedule confirmation. Every
// field is independently optional; the orchestrator validates what the
// change action actually requires.
type ChangeDetails struct {
	StudentName string
	CourseName  string
	CoachHint   string
	Start       *time.Time
	End         *time.Time
}

var (
	confirmationRe  = regexp.MustCompile(`(?i)^Confirmation:\s+(.+?)['’]s booking`)
	changedToLineRe = regexp.MustCompile(`(?i)booking for (.+?) changed to\s+(\d{2}[-/]\d{2}[-/]\d{4})\s+at\s+(\d{1,2}:\d{2}\s*[AP]M)\s+to\s+(\d{1,2}:\d{2}\s*[AP]M)(?:\s+with\s+(Coach[A-Za-z\s]+))?`)
)

// ExtractChangeDetails parses a "booking for X changed to <date> at <time> to
// <time> [with Coach Y]" body. Free-text times are interpreted in the given
// business zone and returned in UTC.
func ExtractChangeDetails(text string, zone *time.Location) ChangeDetails {
	var d ChangeDetails

	if m := confirmationRe.FindStringSubmatch(text); len(m) > 1 {
		d.StudentName = strings.TrimSpace(m[1])
	}

	m := changedToLineRe.FindStringSubmatch(text)
	if m == nil {
		return d
	}

	d.CourseName = strings.TrimSpace(m[1])
	if start, err := parseLocalDateTime(m[2], m[3], zone); err == nil {
		d.Start = utcPtr(start)
		if end, err := parseClockOn(start, m[4], zone); err == nil {
			d.End = utcPtr(end)
		}
	}
	if m[5] != "" {
		d.CoachHint = CleanCoachHint(m[5])
	}
	return d
}
