package translate

import (
	"regexp"
	"strconv"
	"strings"
)

// ChunkSize is the number of entries sent in one request.
const ChunkSize = 50

// openerRe matches the opening "@{i} " marker. The closer must repeat the
// same index, which RE2 cannot express with a back-reference, so it is
// searched for separately.
var openerRe = regexp.MustCompile(`@(\d+)\s+`)

// Marked is one translated text recovered from a response.
type Marked struct {
	Index int
	Text  string
}

// EncodeBatch wraps each text in "@{i} text {i}@" markers, one per line.
func EncodeBatch(texts []string) string {
	lines := make([]string, len(texts))
	for i, t := range texts {
		n := strconv.Itoa(i)
		lines[i] = "@" + n + " " + t + " " + n + "@"
	}
	return strings.Join(lines, "\n")
}

// DecodeBatch recovers marked texts from a response. A match runs from
// "@{i}" plus whitespace to the nearest whitespace plus "{i}@" with the same
// index; the text between may span lines and is trimmed. Matches do not
// overlap and are returned in response order.
func DecodeBatch(resp string) []Marked {
	var out []Marked
	pos := 0
	for pos < len(resp) {
		loc := openerRe.FindStringSubmatchIndex(resp[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[0]
		bodyStart := pos + loc[1]
		digits := resp[pos+loc[2] : pos+loc[3]]

		idx, err := strconv.Atoi(digits)
		if err != nil {
			pos = start + 1
			continue
		}

		bodyEnd, next, ok := findCloser(resp, bodyStart, digits)
		if !ok {
			pos = start + 1
			continue
		}

		out = append(out, Marked{Index: idx, Text: strings.TrimSpace(resp[bodyStart:bodyEnd])})
		pos = next
	}
	return out
}

// findCloser finds the first "{digits}@" after at least one body character
// that is preceded by whitespace. It returns where the body ends (before the
// whitespace run) and where scanning should resume.
func findCloser(s string, bodyStart int, digits string) (bodyEnd, next int, ok bool) {
	closer := digits + "@"
	from := bodyStart + 1
	for from < len(s) {
		i := strings.Index(s[from:], closer)
		if i < 0 {
			return 0, 0, false
		}
		at := from + i
		end := at
		for end > bodyStart && isSpace(s[end-1]) {
			end--
		}
		if end < at && end > bodyStart {
			return end, at + len(closer), true
		}
		from = at + 1
	}
	return 0, 0, false
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
