package emailparse

import (
	"regexp"
	"strings"
)

var (
	styleBlockRe = regexp.MustCompile(`(?is)<style.*?</style>`)
	scriptRe     = regexp.MustCompile(`(?is)<script.*?</script>`)
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	lineTrailRe  = regexp.MustCompile(`\s+\n`)
	spaceRunRe   = regexp.MustCompile(`[ \t]+`)
	wsRe         = regexp.MustCompile(`\s+`)
)

var entities = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// StripHTML reduces an HTML email body to plain text: style/script blocks
// and tag markup are removed, a small set of entities is decoded, and
// whitespace is collapsed.
func StripHTML(html string) string {
	s := styleBlockRe.ReplaceAllString(html, "")
	s = scriptRe.ReplaceAllString(s, "")
	s = tagRe.ReplaceAllString(s, " ")
	s = entities.Replace(s)
	s = lineTrailRe.ReplaceAllString(s, "\n")
	s = spaceRunRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Canon is the comparison key used everywhere names are matched: trimmed,
// lowercased, inner whitespace collapsed. Two strings are the same for
// matching purposes iff their Canon forms are equal.
func Canon(s string) string {
	return wsRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

var camelBoundaryRe = regexp.MustCompile(`([a-z])([A-Z])`)

// SplitCamelCoach turns camel-joined names like "CoachAmber" into
// "Coach Amber".
func SplitCamelCoach(s string) string {
	return strings.TrimSpace(camelBoundaryRe.ReplaceAllString(s, "$1 $2"))
}

var andSepRe = regexp.MustCompile(`(?i)\s+and\s+`)

// SplitStudentList splits a joined student-name string on "&" after
// normalizing "and" and "," separators to "&".
func SplitStudentList(raw string) []string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	s = andSepRe.ReplaceAllString(s, "&")
	s = strings.ReplaceAll(s, ",", "&")
	parts := make([]string, 0, 2)
	for _, p := range strings.Split(s, "&") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
