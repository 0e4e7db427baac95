package agents

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxFindings   = 10
	maxSection    = 5
	maxHypotheses = 5
	maxInsights   = 5
	maxGaps       = 5
	maxQuestions  = 7

	// A long plain line inside a strengths/weaknesses section ends it.
	sectionBreakLen = 50
)

const bulletMarkers = "-*•"

var hypothesisMarker = regexp.MustCompile(`(?i)hypothesis|h\d`)

func startsWithBullet(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return strings.ContainsRune(bulletMarkers, r)
}

func startsWithDigit(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsDigit(r)
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

// ExtractFindings returns list-shaped lines: bullets or numbered items.
func ExtractFindings(text string) []string {
	var out []string
	for line := range strings.Lines(text) {
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		if startsWithBullet(t) || startsWithDigit(t) {
			out = append(out, t)
			if len(out) == maxFindings {
				break
			}
		}
	}
	return out
}

// ExtractSection collects the list lines that follow a header mentioning
// keyword. A header is a line containing the keyword (case-insensitive)
// that also contains a bullet marker or starts with a digit. Once inside,
// collection runs until a long line with no list markup appears; a later
// section header does not end it.
func ExtractSection(text, keyword string) []string {
	keyword = strings.ToLower(keyword)
	var (
		out       []string
		inSection bool
	)
	for line := range strings.Lines(text) {
		line = strings.TrimRight(line, "\r\n")
		t := strings.TrimSpace(line)
		if t != "" && strings.Contains(strings.ToLower(line), keyword) &&
			(strings.ContainsAny(line, bulletMarkers) || startsWithDigit(line)) {
			inSection = true
		}
		if !inSection || t == "" {
			continue
		}
		if startsWithBullet(t) || startsWithDigit(t) {
			out = append(out, t)
			if len(out) == maxSection {
				break
			}
			continue
		}
		if !strings.ContainsAny(line, bulletMarkers) && runeLen(t) > sectionBreakLen {
			break
		}
	}
	return out
}

// ExtractHypotheses returns lines naming a hypothesis ("hypothesis", "H1").
func ExtractHypotheses(text string) []string {
	return collect(text, maxHypotheses, 20, func(lower string) bool {
		return hypothesisMarker.MatchString(lower)
	})
}

// ExtractInsights returns lines that talk about insights, patterns or
// relationships.
func ExtractInsights(text string) []string {
	return collect(text, maxInsights, 30, func(lower string) bool {
		return strings.Contains(lower, "insight") ||
			strings.Contains(lower, "pattern") ||
			strings.Contains(lower, "relationship")
	})
}

func ExtractGaps(text string) []string {
	return collect(text, maxGaps, 20, func(lower string) bool {
		return strings.Contains(lower, "gap")
	})
}

func ExtractQuestions(text string) []string {
	return collect(text, maxQuestions, 10, func(lower string) bool {
		return strings.Contains(lower, "?")
	})
}

// collect keeps trimmed lines longer than minLen runes that satisfy match,
// stopping at limit.
func collect(text string, limit, minLen int, match func(lower string) bool) []string {
	var out []string
	for line := range strings.Lines(text) {
		t := strings.TrimSpace(line)
		if runeLen(t) <= minLen || !match(strings.ToLower(t)) {
			continue
		}
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out
}
