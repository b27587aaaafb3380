package services

import (
	"testing"
	"time"
)

func TestGenerateStructuredNotes(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	start := time.Date(2026, 9, 1, 21, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	got := GenerateStructuredNotes(NoteDetails{
		StudentName: "Leo Zhang",
		CourseName:  "Private lesson",
		CoachName:   "Amber",
		Start:       start,
		End:         end,
	}, loc)

	want := "Student: Leo Zhang\n" +
		"Lesson Type: Private lesson\n" +
		"Coach: Amber\n" +
		"Start Time: 9/1/2026, 2:00 PM\n" +
		"End Time: 3:00 PM"
	if got != want {
		t.Fatalf("notes mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestGenerateStructuredNotesMissingFields(t *testing.T) {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	got := GenerateStructuredNotes(NoteDetails{Start: start, End: start.Add(30 * time.Minute)}, time.UTC)

	want := "Student: N/A\n" +
		"Lesson Type: N/A\n" +
		"Coach: N/A\n" +
		"Start Time: 9/1/2026, 10:00 AM\n" +
		"End Time: 10:30 AM"
	if got != want {
		t.Fatalf("notes mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestGenerateStructuredNotesDeterministic(t *testing.T) {
	d := NoteDetails{
		StudentName: "Mia",
		CourseName:  "Trial class",
		CoachName:   "Daniela",
		Start:       time.Date(2026, 9, 1, 17, 30, 0, 0, time.UTC),
		End:         time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC),
	}
	if GenerateStructuredNotes(d, time.UTC) != GenerateStructuredNotes(d, time.UTC) {
		t.Fatal("identical inputs must render identical notes")
	}
}

func TestLessonTypeFromSubject(t *testing.T) {
	if got := lessonTypeFromSubject("Leo has booked Private lesson"); got != "Private lesson" {
		t.Fatalf("got %q", got)
	}
	if got := lessonTypeFromSubject("Leo has booked Trial class"); got != "Trial class" {
		t.Fatalf("got %q", got)
	}
	if got := lessonTypeFromSubject("something else"); got != "Trial class" {
		t.Fatalf("default = %q, want Trial class", got)
	}
}
