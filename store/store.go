// Package store holds the ordered collection of translatable entries that a
// translation run works on.
//
// Entry fields are only mutated from inside Loop.Do so that a single
// goroutine owns all writes while readers (progress display, listings) work
// from snapshots.
package store

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/minios-linux/mclocalizer/content"
	"github.com/minios-linux/mclocalizer/snbt"
)

// Entry is one translatable string.
type Entry struct {
	// Row is the 1-based display index assigned by Renumber.
	Row int
	// ID is the localization key.
	ID string
	// Original is the source text as loaded. It is never modified.
	Original string
	// Translated starts equal to Original and receives accepted translations.
	Translated string
	// Selected marks the entry as pending translation.
	Selected bool
	// Kind is the original JSON scalar type.
	Kind content.ValueKind
	// Array records that the value was an array; Original and Translated
	// then hold bracketed array text.
	Array bool
}

// Store is an ordered, replaceable list of entries.
type Store struct {
	mu        sync.RWMutex
	entries   []*Entry
	listeners []func()
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// ReplaceAll swaps the whole content of the store, renumbers rows and
// notifies listeners once.
func (s *Store) ReplaceAll(entries []*Entry) {
	s.mu.Lock()
	s.entries = append([]*Entry(nil), entries...)
	renumber(s.entries)
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Subscribe registers fn to be called after every ReplaceAll.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Entries returns the entries in order. The slice is a copy; the entries are
// shared.
func (s *Store) Entries() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Entry(nil), s.entries...)
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Selected returns the entries still pending translation, in order.
func (s *Store) Selected() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Entry
	for _, e := range s.entries {
		if e.Selected {
			out = append(out, e)
		}
	}
	return out
}

// CountSelected returns the number of entries pending translation.
func (s *Store) CountSelected() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.entries {
		if e.Selected {
			n++
		}
	}
	return n
}

// Renumber assigns 1-based rows in order.
func (s *Store) Renumber() {
	s.mu.Lock()
	renumber(s.entries)
	s.mu.Unlock()
}

func renumber(entries []*Entry) {
	for i, e := range entries {
		e.Row = i + 1
	}
}

// ---------------------------------------------------------------------------
// Document conversion
// ---------------------------------------------------------------------------

// FromDocument builds entries from a decoded document. Array values become
// bracketed array text. Entries with blank text start deselected.
func FromDocument(doc *content.Document) []*Entry {
	entries := make([]*Entry, 0, doc.Len())
	doc.Each(func(key string, v content.Value) {
		text := v.Scalar
		if v.Array {
			text = snbt.ArrayText(v.Items)
		}
		entries = append(entries, &Entry{
			ID:         key,
			Original:   text,
			Translated: text,
			Selected:   strings.TrimSpace(text) != "" && text != "[]",
			Kind:       v.Kind,
			Array:      v.Array,
		})
	})
	renumber(entries)
	return entries
}

// ToDocument builds a document from the translated text of entries.
// Array entries whose text still parses as an array are written back as
// arrays; otherwise the text is kept as a scalar.
func ToDocument(entries []*Entry, comments []string) *content.Document {
	doc := content.NewDocument()
	doc.Comments = append([]string(nil), comments...)
	for _, e := range entries {
		if e.Array {
			if items, ok := snbt.ParseArrayText(e.Translated); ok {
				doc.Set(e.ID, content.Array(items...))
				continue
			}
		}
		doc.Set(e.ID, content.TypedScalar(e.Translated, e.Kind))
	}
	return doc
}

// ---------------------------------------------------------------------------
// Single-writer loop
// ---------------------------------------------------------------------------

// ErrLoopStopped is returned by Do when the loop is no longer running.
var ErrLoopStopped = errors.New("store loop stopped")

type op struct {
	fn   func()
	done chan struct{}
}

// Loop runs posted mutations one at a time on the goroutine that calls Run.
type Loop struct {
	ops     chan op
	stopped chan struct{}
	once    sync.Once
}

// NewLoop returns a loop that is ready for Run.
func NewLoop() *Loop {
	return &Loop{
		ops:     make(chan op),
		stopped: make(chan struct{}),
	}
}

// Run executes posted functions until ctx ends.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.stopped) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case o := <-l.ops:
			o.fn()
			close(o.done)
		}
	}
}

// Do posts fn to the loop and waits until it has run. A function that has
// been accepted by the loop always runs to completion before Do returns.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	o := op{fn: fn, done: make(chan struct{})}
	select {
	case l.ops <- o:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		return ErrLoopStopped
	}
	<-o.done
	return nil
}
