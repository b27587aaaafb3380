package emailparse

import (
	"regexp"
	"strings"
)

// Students holds the parsed student reference: the raw joined string and,
// when the email named several students, the split list. Both fields are
// optional; callers check for absence.
type Students struct {
	Name  string
	Names []string
}

var (
	bookedByRe        = regexp.MustCompile(`(?i)^(.+?)\s+has booked`)
	cancelledForRe    = regexp.MustCompile(`(?i)has been cancelled for\s+(.+?)\.`)
	cancellationSubRe = regexp.MustCompile(`(?i)cancellation of.*?for\s+(.+)`)
)

// ExtractStudents reads student name(s) from a booking subject or, for
// cancellations, from body and subject fallbacks. Never fails; an empty
// result is a valid "not present" outcome.
func ExtractStudents(subject, text string) Students {
	if m := bookedByRe.FindStringSubmatch(subject); len(m) > 1 {
		raw := strings.TrimSpace(m[1])
		parts := SplitStudentList(raw)
		s := Students{Name: raw}
		if len(parts) > 1 {
			s.Names = parts
		}
		return s
	}
	if m := cancelledForRe.FindStringSubmatch(text); len(m) > 1 {
		return Students{Name: strings.TrimSpace(m[1])}
	}
	if m := cancellationSubRe.FindStringSubmatch(subject); len(m) > 1 {
		return Students{Name: strings.TrimSpace(m[1])}
	}
	return Students{}
}

// NameList is the set of names to match candidates against: the split list
// when present, else the singular name.
func (s Students) NameList() []string {
	if len(s.Names) > 0 {
		return s.Names
	}
	if s.Name != "" {
		return []string{s.Name}
	}
	return nil
}

func (s Students) Empty() bool {
	return s.Name == "" && len(s.Names) == 0
}
