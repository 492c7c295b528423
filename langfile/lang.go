// Package langfile implements reading and writing of Minecraft .lang files.
//
// Format: key=value pairs, one per line, split on the first '='. Lines whose
// first non-space character is '#' are comments. Comments are collected into
// the document header and written back only on request (BetterQuesting keeps
// a comment header above its entries). Blank lines and lines without '=' are
// dropped. There is no escaping.
//
//	# Generated by BetterQuesting
//	item.sword=Sword
//	item.axe=Axe
package langfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minios-linux/mclocalizer/content"
)

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// Parse parses .lang content. Duplicate keys overwrite the earlier value but
// keep its position.
func Parse(data []byte) (*content.Document, error) {
	doc := content.NewDocument()

	text := content.StripBOM(string(data))
	// Normalise Windows line endings.
	text = strings.ReplaceAll(text, "\r\n", "\n")

	for _, raw := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(raw)

		switch {
		case trimmed == "":
			continue

		case strings.HasPrefix(trimmed, "#"):
			doc.Comments = append(doc.Comments, raw)

		default:
			k, v, ok := strings.Cut(trimmed, "=")
			if !ok {
				continue
			}
			k = strings.TrimSpace(k)
			if k == "" {
				continue
			}
			doc.Set(k, content.Scalar(strings.TrimSpace(v)))
		}
	}

	return doc, nil
}

// ---------------------------------------------------------------------------
// Serialization
// ---------------------------------------------------------------------------

// Marshal serialises doc to .lang format, one key=value line per entry in
// document order. With preserveComments the header comments are written
// first, followed by one blank line. .lang has no array syntax, so array
// values are written as their elements joined with ", ".
func Marshal(doc *content.Document, preserveComments bool) []byte {
	var buf bytes.Buffer

	if preserveComments && len(doc.Comments) > 0 {
		for _, c := range doc.Comments {
			buf.WriteString(c)
			buf.WriteByte('\n')
		}
		buf.WriteByte('\n')
	}

	doc.Each(func(key string, v content.Value) {
		buf.WriteString(key)
		buf.WriteByte('=')
		if v.Array {
			buf.WriteString(strings.Join(v.Items, ", "))
		} else {
			buf.WriteString(v.Scalar)
		}
		buf.WriteByte('\n')
	})

	return buf.Bytes()
}

// WriteFile serialises and writes to path, creating parent directories
// with 0755 permissions.
func WriteFile(path string, doc *content.Document, preserveComments bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, Marshal(doc, preserveComments), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
