package services

import (
	"strings"
	"time"
)

type NoteDetails struct {
	StudentName string
	CourseName  string
	CoachName   string
	Start       time.Time
	End         time.Time
}

// GenerateStructuredNotes renders the five-line human-readable summary that
// overwrites the notes field on every write. Deterministic for identical
// inputs; times are shown in the business display zone.
func GenerateStructuredNotes(d NoteDetails, zone *time.Location) string {
	lines := []string{
		"Student: " + orNA(d.StudentName),
		"Lesson Type: " + orNA(d.CourseName),
		"Coach: " + orNA(d.CoachName),
		"Start Time: " + d.Start.In(zone).Format("1/2/2006, 3:04 PM"),
		"End Time: " + d.End.In(zone).Format("3:04 PM"),
	}
	return strings.Join(lines, "\n")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// lessonTypeFromSubject derives the course label the booking platform uses
// in its subjects.
func lessonTypeFromSubject(subject string) string {
	if strings.Contains(subject, "Private lesson") {
		return "Private lesson"
	}
	return "Trial class"
}
