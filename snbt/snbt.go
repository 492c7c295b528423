// Package snbt reads and writes the SNBT (stringified NBT) dialect used by
// quest and mod localization files.
//
// The dialect is not JSON. Keys are bare identifiers followed by a colon and
// values are either double-quoted strings or square-bracketed arrays:
//
//	{
//		quest.title: "Getting Started",
//		quest.description: [
//			"First line",
//			"Second line"
//		],
//		quest.subtitle: ["Only one"]
//	}
//
// Parsing is line oriented. An array either fits on one line or opens with a
// lone "key: [" and closes with a lone "]", one element per line in between.
// Key order is preserved.
package snbt

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/minios-linux/mclocalizer/content"
)

var (
	arrayLineRe  = regexp.MustCompile(`^([\w.\-]+):\s*\[(.*)\]$`)
	arrayStartRe = regexp.MustCompile(`^([\w.\-]+):\s*\[$`)
)

// ---------------------------------------------------------------------------
// Escaping
// ---------------------------------------------------------------------------

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
)

// Escape prepares s for use inside a double-quoted SNBT string.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Unescape reverses Escape. Backslash sequences other than \", \\, \n and \t
// are kept verbatim.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		switch s[i+1] {
		case '"', '\\':
			b.WriteByte(s[i+1])
			i++
		case 'n':
			b.WriteByte('\n')
			i++
		case 't':
			b.WriteByte('\t')
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// isQuoted reports whether s is wrapped in one pair of double quotes.
func isQuoted(s string) bool {
	return len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"'
}

// unquote strips the surrounding quotes of a quoted token and unescapes it.
// Unquoted tokens are returned unchanged.
func unquote(s string) string {
	if isQuoted(s) {
		return Unescape(s[1 : len(s)-1])
	}
	return s
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

type parseState int

const (
	scanningKey parseState = iota
	inArray
)

// Parse decodes SNBT text into a document.
//
// Lines that carry neither an array nor a "key: value" pair (such as the
// enclosing braces) are skipped. A multi-line array that is never closed is
// reported as content.ErrMalformedContent.
func Parse(text string) (*content.Document, error) {
	doc := content.NewDocument()

	state := scanningKey
	var (
		arrayKey  string
		arrayLine int
		items     []string
	)

	text = strings.ReplaceAll(content.StripBOM(text), "\r\n", "\n")
	for n, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if state == inArray {
			if line == "]" || line == "]," {
				doc.Set(arrayKey, content.Array(items...))
				state, items = scanningKey, nil
				continue
			}
			elem := strings.TrimSpace(strings.TrimSuffix(line, ","))
			items = append(items, unquote(elem))
			continue
		}

		line = strings.TrimSpace(strings.TrimSuffix(line, ","))

		if m := arrayLineRe.FindStringSubmatch(line); m != nil {
			doc.Set(m[1], content.Array(splitInline(m[2])...))
			continue
		}

		if m := arrayStartRe.FindStringSubmatch(line); m != nil {
			arrayKey, arrayLine = m[1], n+1
			items = []string{}
			state = inArray
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		doc.Set(key, content.Scalar(unquote(strings.TrimSpace(value))))
	}

	if state == inArray {
		return nil, fmt.Errorf("%w: array %q opened on line %d is not closed",
			content.ErrMalformedContent, arrayKey, arrayLine)
	}

	return doc, nil
}

// splitInline splits the interior of a one-line array into unquoted elements.
func splitInline(inner string) []string {
	parts := splitTopLevel(inner)
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		items = append(items, unquote(p))
	}
	return items
}

// splitTopLevel splits s on commas that are outside double quotes. Escaped
// quotes inside a quoted run do not end it. Parts are trimmed and empty parts
// dropped.
func splitTopLevel(s string) []string {
	var (
		parts    []string
		cur      strings.Builder
		inQuotes bool
		escaped  bool
	)

	flush := func() {
		if p := strings.TrimSpace(cur.String()); p != "" {
			parts = append(parts, p)
		}
		cur.Reset()
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inQuotes && c == '\\':
			escaped = true
		case c == '"':
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			flush()
			continue
		}
		cur.WriteByte(c)
	}
	flush()

	return parts
}

// ---------------------------------------------------------------------------
// Formatting
// ---------------------------------------------------------------------------

// HideDependencyLinesKey marks a synthetic quest setting that must never be
// written into translated quest files.
const HideDependencyLinesKey = "default_hide_dependency_lines"

// Policy controls which entries Format writes.
type Policy struct {
	// SuppressKeySubstrings drops every entry whose key contains one of
	// these substrings.
	SuppressKeySubstrings []string
}

// DefaultPolicy suppresses HideDependencyLinesKey.
func DefaultPolicy() Policy {
	return Policy{SuppressKeySubstrings: []string{HideDependencyLinesKey}}
}

// Suppressed reports whether key is filtered out by the policy.
func (p Policy) Suppressed(key string) bool {
	for _, sub := range p.SuppressKeySubstrings {
		if sub != "" && strings.Contains(key, sub) {
			return true
		}
	}
	return false
}

// Format encodes a document as SNBT. Entries are tab-indented and
// comma-terminated except the last; the document is wrapped in braces.
func Format(doc *content.Document, policy Policy) string {
	var lines []string
	doc.Each(func(key string, v content.Value) {
		if policy.Suppressed(key) {
			return
		}
		var rendered string
		if v.Array {
			rendered = formatItems(v.Items)
		} else {
			rendered = FormatValue(v.Scalar)
		}
		lines = append(lines, "\t"+key+": "+rendered)
	})

	var b strings.Builder
	b.WriteString("{\n")
	for i, line := range lines {
		b.WriteString(line)
		if i < len(lines)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("}\n")
	return b.String()
}

// WriteFile formats doc and writes it to path, creating parent directories
// with 0755 permissions.
func WriteFile(path string, doc *content.Document, policy Policy) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(Format(doc, policy)), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// FormatValue renders one entry text as an SNBT value.
//
// Text wrapped in square brackets whose interior starts with a quote or holds
// a newline or comma is treated as an array. Multi-line interiors are split on
// newlines and written one element per line; single-line interiors are split
// on commas outside quotes and stay on one line. Anything else is written as a
// quoted string.
func FormatValue(text string) string {
	trimmed := strings.TrimSpace(text)

	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") && len(trimmed) >= 2 {
		inner := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
		if inner == "" {
			return "[]"
		}
		if strings.HasPrefix(inner, `"`) || strings.ContainsAny(inner, "\n,") {
			if strings.Contains(inner, "\n") {
				return formatItems(arrayElements(inner))
			}
			return formatInline(arrayElements(inner))
		}
	}

	s := text
	if isQuoted(trimmed) {
		s = trimmed[1 : len(trimmed)-1]
	}
	return `"` + Escape(s) + `"`
}

// arrayElements splits array text into raw element values.
func arrayElements(inner string) []string {
	var parts []string
	if strings.Contains(inner, "\n") {
		for _, line := range strings.Split(inner, "\n") {
			line = strings.TrimSpace(line)
			line = strings.TrimSpace(strings.TrimSuffix(line, ","))
			if line != "" {
				parts = append(parts, line)
			}
		}
	} else {
		parts = splitTopLevel(inner)
	}

	items := make([]string, 0, len(parts))
	for _, p := range parts {
		items = append(items, unquote(p))
	}
	return items
}

// formatItems renders array elements. A single element stays inline; two or
// more go one per line with trailing commas on all but the last.
func formatItems(items []string) string {
	if len(items) < 2 {
		return formatInline(items)
	}

	var b strings.Builder
	b.WriteString("[\n")
	for i, item := range items {
		b.WriteString("\t\t\"")
		b.WriteString(Escape(item))
		b.WriteByte('"')
		if i < len(items)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("\t]")
	return b.String()
}

// formatInline renders array elements on one line separated by ", ".
func formatInline(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = `"` + Escape(item) + `"`
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// ArrayText renders array items as the editable bracketed text used by the
// entry store: one quoted, escaped element per line. FormatValue reads it back.
func ArrayText(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	var b strings.Builder
	b.WriteString("[\n")
	for i, item := range items {
		b.WriteByte('"')
		b.WriteString(Escape(item))
		b.WriteByte('"')
		if i < len(items)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteByte(']')
	return b.String()
}

// ParseArrayText is the inverse of ArrayText. It reports false when text is
// not bracketed array text.
func ParseArrayText(text string) ([]string, bool) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 2 || trimmed[0] != '[' || trimmed[len(trimmed)-1] != ']' {
		return nil, false
	}
	inner := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
	if inner == "" {
		return []string{}, true
	}
	if !strings.HasPrefix(inner, `"`) && !strings.ContainsAny(inner, "\n,") {
		return nil, false
	}
	return arrayElements(inner), true
}
