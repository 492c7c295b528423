// Package content defines the format-neutral localization document shared by
// the lang, JSON and SNBT codecs.
//
// A Document is an ordered mapping from key to Value. Key order from decoding
// is kept on encoding unless keys are explicitly added or removed. Writing an
// existing key replaces its value but keeps its original position.
package content

import (
	"errors"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ErrUnsupportedFormat is returned for file names whose extension is not one
// of .lang, .json or .snbt.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ErrMalformedContent is returned when a file cannot be decoded.
var ErrMalformedContent = errors.New("malformed content")

// ---------------------------------------------------------------------------
// Formats
// ---------------------------------------------------------------------------

// Format identifies an on-disk localization format.
type Format int

const (
	FormatLang Format = iota // flat key=value
	FormatJSON               // JSON object
	FormatSNBT               // stringified NBT
)

// String returns the file extension of the format without the dot.
func (f Format) String() string {
	switch f {
	case FormatLang:
		return "lang"
	case FormatJSON:
		return "json"
	case FormatSNBT:
		return "snbt"
	default:
		return "unknown"
	}
}

// Ext returns the file extension including the leading dot.
func (f Format) Ext() string {
	return "." + f.String()
}

// ---------------------------------------------------------------------------
// Values
// ---------------------------------------------------------------------------

// ValueKind records the original scalar type of a value so that encoders can
// re-type it instead of quoting everything as a string.
type ValueKind int

const (
	KindString ValueKind = iota
	KindInteger
	KindFloat
	KindBoolean
	KindRawJSON // objects, null and anything else kept as raw JSON text
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindRawJSON:
		return "raw"
	default:
		return "unknown"
	}
}

// Value is either a scalar string or an ordered list of strings.
type Value struct {
	// Scalar holds the text of a scalar value.
	Scalar string
	// Items holds the elements of an array value.
	Items []string
	// Array reports whether the value is an array.
	Array bool
	// Kind is the original scalar type (KindString for arrays).
	Kind ValueKind
}

// Scalar returns a string scalar value.
func Scalar(s string) Value {
	return Value{Scalar: s}
}

// TypedScalar returns a scalar value with an explicit kind.
func TypedScalar(s string, kind ValueKind) Value {
	return Value{Scalar: s, Kind: kind}
}

// Array returns an array value. A nil slice is stored as an empty array.
func Array(items ...string) Value {
	if items == nil {
		items = []string{}
	}
	return Value{Items: items, Array: true}
}

// Equal reports whether two values hold the same data.
func (v Value) Equal(o Value) bool {
	if v.Array != o.Array || v.Kind != o.Kind {
		return false
	}
	if !v.Array {
		return v.Scalar == o.Scalar
	}
	if len(v.Items) != len(o.Items) {
		return false
	}
	for i := range v.Items {
		if v.Items[i] != o.Items[i] {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Document
// ---------------------------------------------------------------------------

// Document is an ordered key → value mapping.
type Document struct {
	values *orderedmap.OrderedMap[string, Value]
	// Comments holds header comment lines of lang files, verbatim and in
	// file order. Other formats leave it empty.
	Comments []string
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{values: orderedmap.New[string, Value]()}
}

// Set stores v under key. A new key is appended; an existing key keeps its
// position and takes the new value.
func (d *Document) Set(key string, v Value) {
	d.values.Set(key, v)
}

// Get returns the value stored under key.
func (d *Document) Get(key string) (Value, bool) {
	return d.values.Get(key)
}

// Len returns the number of keys.
func (d *Document) Len() int {
	return d.values.Len()
}

// Keys returns the keys in document order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, d.values.Len())
	for pair := d.values.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Each calls fn for every key in document order.
func (d *Document) Each(fn func(key string, v Value)) {
	for pair := d.values.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Equal reports whether both documents hold the same keys in the same order
// with equal values. Comments are not compared.
func (d *Document) Equal(o *Document) bool {
	if d.Len() != o.Len() {
		return false
	}
	a, b := d.values.Oldest(), o.values.Oldest()
	for a != nil && b != nil {
		if a.Key != b.Key || !a.Value.Equal(b.Value) {
			return false
		}
		a, b = a.Next(), b.Next()
	}
	return a == nil && b == nil
}

// StripBOM removes a leading UTF-8 byte order mark.
func StripBOM(text string) string {
	return strings.TrimPrefix(text, "\ufeff")
}
