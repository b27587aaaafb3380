package emailparse

import "regexp"

// Every field extractor in this package is a cascade: an ordered list of
// candidate texts tried against an ordered list of patterns, first non-empty
// capture wins. Order matters: earlier sources and patterns are more
// trustworthy than later ones.

func firstMatch(haystacks []string, patterns []*regexp.Regexp) string {
	for _, s := range haystacks {
		if s == "" {
			continue
		}
		for _, re := range patterns {
			if m := re.FindStringSubmatch(s); len(m) > 1 && m[1] != "" {
				return m[1]
			}
		}
	}
	return ""
}
