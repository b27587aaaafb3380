package emailparse

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
)

// TimeWindow is a parsed appointment window. Both ends are optional: an
// empty window is a valid "could not parse" outcome, not a failure. All
// non-nil values are in UTC.
type TimeWindow struct {
	Start *time.Time
	End   *time.Time
}

func (w TimeWindow) Complete() bool {
	return w.Start != nil && w.End != nil
}

var (
	ldJSONScriptRe = regexp.MustCompile(`(?is)<script[^>]+type=["']application/ld\+json["'][^>]*>(.*?)</script>`)
	onDateAtRe     = regexp.MustCompile(`(?i)\bon\s+(\d{2}[-/]\d{2}[-/]\d{4})\s+at\s+(\d{1,2}:\d{2}\s*[AP]M)\b`)
	sameLineEndRe  = regexp.MustCompile(`(?i)(?:–|to)\s*(\d{1,2}:\d{2}\s*[AP]M)\b`)
	whenLineRe     = regexp.MustCompile(`(?i)When:\s*([A-Za-z]{3}\s+[A-Za-z]{3}\s+\d{1,2},\s+\d{4}\s+\d{1,2}:\d{2}\s*[AP]M)\s*(?:–|-)\s*(\d{1,2}:\d{2}\s*[AP]M)(?:\s*\(([^)]+)\))?`)
	clockSpaceRe   = regexp.MustCompile(`(?i)\s*([AP]M)\b`)
)

// reservationTimes mirrors the shapes the booking platform embeds in its
// ld+json blocks: start/end at the top level, under reservationFor, or under
// reservation.
type reservationTimes struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type ldReservation struct {
	reservationTimes
	ReservationFor *reservationTimes `json:"reservationFor"`
	Reservation    *reservationTimes `json:"reservation"`
}

// ExtractWhen pulls the appointment start/end from the email, in priority
// order: embedded ld+json structured data (authoritative when present), the
// free-text "on MM-DD-YYYY at H:MM AM" pattern in the given business zone,
// then a calendar-style "When:" line with its own declared zone.
func ExtractWhen(subject, text, html string, zone *time.Location) TimeWindow {
	if w, ok := whenFromStructuredData(html); ok {
		return w
	}

	txt := subject + "\n" + text

	if loc := onDateAtRe.FindStringSubmatchIndex(txt); loc != nil {
		dateStr := txt[loc[2]:loc[3]]
		timeStr := txt[loc[4]:loc[5]]
		if start, err := parseLocalDateTime(dateStr, timeStr, zone); err == nil {
			w := TimeWindow{Start: utcPtr(start)}
			// The end time, if declared, sits on the same line behind a
			// dash or "to" separator.
			tail := txt[loc[0]:min(loc[0]+120, len(txt))]
			if m := sameLineEndRe.FindStringSubmatch(tail); len(m) > 1 {
				if end, err := parseClockOn(start, m[1], zone); err == nil {
					w.End = utcPtr(end)
				}
			}
			return w
		}
	}

	if m := whenLineRe.FindStringSubmatch(txt); m != nil {
		tzName := m[3]
		if tzName == "" {
			tzName = "UTC"
		}
		loc, err := time.LoadLocation(tzName)
		if err != nil {
			loc = time.UTC
		}
		start, err := time.ParseInLocation("Mon Jan 2, 2006 3:04 PM", normalizeClock(m[1]), loc)
		if err == nil {
			w := TimeWindow{Start: utcPtr(start)}
			if end, err := parseClockOn(start, m[2], loc); err == nil {
				w.End = utcPtr(end)
			}
			return w
		}
	}

	return TimeWindow{}
}

func whenFromStructuredData(html string) (TimeWindow, bool) {
	if html == "" {
		return TimeWindow{}, false
	}
	m := ldJSONScriptRe.FindStringSubmatch(html)
	if m == nil {
		return TimeWindow{}, false
	}
	var ld ldReservation
	if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &ld); err != nil {
		return TimeWindow{}, false
	}

	startISO := ld.StartDate
	endISO := ld.EndDate
	if startISO == "" && ld.ReservationFor != nil {
		startISO = ld.ReservationFor.StartDate
	}
	if startISO == "" && ld.Reservation != nil {
		startISO = ld.Reservation.StartDate
	}
	if endISO == "" && ld.ReservationFor != nil {
		endISO = ld.ReservationFor.EndDate
	}
	if endISO == "" && ld.Reservation != nil {
		endISO = ld.Reservation.EndDate
	}

	var w TimeWindow
	if t, err := parseISO(startISO); err == nil {
		w.Start = utcPtr(t)
	}
	if t, err := parseISO(endISO); err == nil {
		w.End = utcPtr(t)
	}
	// Structured data is only authoritative when it yields a start.
	return w, w.Start != nil
}

func parseISO(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", s)
}

// parseLocalDateTime parses "MM-DD-YYYY" + "H:MM AM" in the given zone.
// "/" date separators are tolerated.
func parseLocalDateTime(dateStr, clock string, zone *time.Location) (time.Time, error) {
	d := strings.ReplaceAll(dateStr, "/", "-")
	return time.ParseInLocation("01-02-2006 3:04 PM", d+" "+normalizeClock(clock), zone)
}

// parseClockOn parses a bare clock time onto the date of ref, in ref's zone
// unless one is given.
func parseClockOn(ref time.Time, clock string, zone *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("3:04 PM", normalizeClock(clock), zone)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(ref.Year(), ref.Month(), ref.Day(), t.Hour(), t.Minute(), 0, 0, zone), nil
}

// normalizeClock uppercases the meridiem and guarantees a single space before
// it, so "2:00pm" and "2:00 PM" parse with one layout.
func normalizeClock(s string) string {
	s = strings.TrimSpace(s)
	s = clockSpaceRe.ReplaceAllStringFunc(s, func(m string) string {
		return " " + strings.ToUpper(strings.TrimSpace(m))
	})
	return s
}

func utcPtr(t time.Time) *time.Time {
	u := t.UTC()
	return &u
}
