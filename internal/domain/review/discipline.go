package review

import (
	"regexp"
	"strings"
)

var disciplinePrefix = regexp.MustCompile(`^[A-Z]{1,3}`)

// InferDiscipline derives the discipline code from a sheet number: the
// leading alphabetic group of the first token, so "E101 - LIGHTING PLAN"
// yields "E" and "CIV-203" yields "CIV". A sheet with no leading letters
// falls back to its first character; an empty sheet yields "".
func InferDiscipline(sheet string) string {
	s := strings.ToUpper(strings.TrimSpace(sheet))
	if s == "" {
		return ""
	}

	token := strings.Fields(s)[0]
	if m := disciplinePrefix.FindString(token); m != "" {
		return m
	}

	runes := []rune(token)
	return string(runes[:1])
}
