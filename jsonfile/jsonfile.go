// Package jsonfile implements reading and writing of flat JSON localization
// files as used by modern Minecraft mods and KubeJS:
//
//	{
//		"item.examplemod.sword": "Sword",
//		"quest.tips": ["First", "Second"],
//		"config.max_level": 30
//	}
//
// Key order is preserved. Every scalar remembers its JSON type so numbers
// and booleans are written back unquoted.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/minios-linux/mclocalizer/content"
)

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// Parse decodes a JSON object into a document, streaming tokens so that key
// order survives. A root that is not an object, or any syntax error, is
// reported as content.ErrMalformedContent.
func Parse(data []byte) (*content.Document, error) {
	dec := json.NewDecoder(strings.NewReader(content.StripBOM(string(data))))

	t, err := dec.Token()
	if err != nil {
		return nil, malformed(err)
	}
	if delim, ok := t.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: expected {, got %v", content.ErrMalformedContent, t)
	}

	doc := content.NewDocument()
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, malformed(err)
		}
		key, ok := kt.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected string key, got %T", content.ErrMalformedContent, kt)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, malformed(fmt.Errorf("value of %q: %w", key, err))
		}
		v, err := classify(raw)
		if err != nil {
			return nil, malformed(fmt.Errorf("value of %q: %w", key, err))
		}
		doc.Set(key, v)
	}

	if _, err := dec.Token(); err != nil {
		return nil, malformed(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after object", content.ErrMalformedContent)
	}

	return doc, nil
}

func malformed(err error) error {
	return fmt.Errorf("%w: %v", content.ErrMalformedContent, err)
}

// classify converts one raw JSON value into a document value.
func classify(raw json.RawMessage) (content.Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return content.Value{}, errors.New("empty value")
	}

	switch c := raw[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return content.Value{}, err
		}
		return content.Scalar(s), nil

	case c == '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return content.Value{}, err
		}
		items := make([]string, 0, len(elems))
		for _, e := range elems {
			items = append(items, elementText(e))
		}
		return content.Array(items...), nil

	case c == 't' || c == 'f':
		return content.TypedScalar(string(raw), content.KindBoolean), nil

	case c == '{' || c == 'n':
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return content.Value{}, err
		}
		return content.TypedScalar(compact.String(), content.KindRawJSON), nil

	default:
		if bytes.ContainsAny(raw, ".eE") {
			return content.TypedScalar(string(raw), content.KindFloat), nil
		}
		return content.TypedScalar(string(raw), content.KindInteger), nil
	}
}

// elementText returns the string form of an array element: strings are
// unquoted, everything else is kept as compact JSON.
func elementText(e json.RawMessage) string {
	var s string
	if err := json.Unmarshal(e, &s); err == nil {
		return s
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, e); err != nil {
		return string(e)
	}
	return compact.String()
}

// ---------------------------------------------------------------------------
// Serialization
// ---------------------------------------------------------------------------

// Marshal writes doc as a tab-indented JSON object in document order.
//
// Values whose trimmed text starts with '[' or '{' and parses as JSON are
// embedded as structured JSON. Integers, floats and booleans are written
// unquoted when their text still parses as that type and as a string
// otherwise.
func Marshal(doc *content.Document) ([]byte, error) {
	if doc.Len() == 0 {
		return []byte("{}\n"), nil
	}

	var b bytes.Buffer
	b.WriteString("{\n")

	i := 0
	var encErr error
	doc.Each(func(key string, v content.Value) {
		if encErr != nil {
			return
		}
		k, err := encode(key, "")
		if err != nil {
			encErr = fmt.Errorf("key %q: %w", key, err)
			return
		}
		val, err := encodeValue(v)
		if err != nil {
			encErr = fmt.Errorf("value of %q: %w", key, err)
			return
		}

		b.WriteByte('\t')
		b.Write(k)
		b.WriteString(": ")
		b.Write(val)
		if i < doc.Len()-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
		i++
	})
	if encErr != nil {
		return nil, encErr
	}

	b.WriteString("}\n")
	return b.Bytes(), nil
}

// WriteFile serialises and writes to path, creating parent directories
// with 0755 permissions.
func WriteFile(path string, doc *content.Document) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func encodeValue(v content.Value) ([]byte, error) {
	if v.Array {
		items := v.Items
		if items == nil {
			items = []string{}
		}
		return encode(items, "\t")
	}

	text := v.Scalar
	trimmed := strings.TrimSpace(text)

	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		if embedded, ok := embed(trimmed); ok {
			return embedded, nil
		}
	}

	switch v.Kind {
	case content.KindInteger:
		if isNumber(trimmed) && !strings.ContainsAny(trimmed, ".eE") {
			return []byte(trimmed), nil
		}
	case content.KindFloat:
		if isNumber(trimmed) {
			return []byte(trimmed), nil
		}
	case content.KindBoolean:
		switch {
		case strings.EqualFold(trimmed, "true"):
			return []byte("true"), nil
		case strings.EqualFold(trimmed, "false"):
			return []byte("false"), nil
		}
	case content.KindRawJSON:
		if embedded, ok := embed(trimmed); ok {
			return embedded, nil
		}
	}

	return encode(text, "")
}

// isNumber reports whether s is a JSON number literal of any magnitude.
func isNumber(s string) bool {
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return false
	}
	return json.Valid([]byte(s))
}

// embed re-indents valid JSON text for placement at the first nesting level.
func embed(text string) ([]byte, bool) {
	if !json.Valid([]byte(text)) {
		return nil, false
	}
	var compact, out bytes.Buffer
	if err := json.Compact(&compact, []byte(text)); err != nil {
		return nil, false
	}
	if err := json.Indent(&out, compact.Bytes(), "\t", "\t"); err != nil {
		return nil, false
	}
	return out.Bytes(), true
}

// encode marshals v without HTML escaping. prefix is applied to every line
// after the first.
func encode(v any, prefix string) ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if prefix != "" {
		enc.SetIndent(prefix, "\t")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(b.Bytes(), "\n"), nil
}
