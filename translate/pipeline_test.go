package translate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/mclocalizer/content"
	"github.com/minios-linux/mclocalizer/source"
	"github.com/minios-linux/mclocalizer/store"
	"github.com/minios-linux/mclocalizer/tree"
)

// funcTranslator adapts a function to Translator and counts calls.
type funcTranslator struct {
	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context, text string) (string, error)
}

func (f *funcTranslator) Translate(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.fn(ctx, text)
}

func (f *funcTranslator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func upper() *funcTranslator {
	return &funcTranslator{fn: func(_ context.Context, text string) (string, error) {
		return strings.ToUpper(text), nil
	}}
}

// memSaver keeps saved documents in memory.
type memSaver struct {
	mu   sync.Mutex
	docs map[string]*content.Document
}

func newMemSaver() *memSaver {
	return &memSaver{docs: make(map[string]*content.Document)}
}

func (m *memSaver) Save(_ context.Context, target source.Location, doc *content.Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[target.String()] = doc
	return "mem:" + target.String(), nil
}

func (m *memSaver) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

func (m *memSaver) Only(t *testing.T) *content.Document {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.Len(t, m.docs, 1)
	for _, d := range m.docs {
		return d
	}
	return nil
}

func langNode(t *testing.T, files map[string]string) *tree.Node {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "lang")
	require.NoError(t, os.MkdirAll(dir, 0755))
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(data), 0644))
	}
	n, err := tree.Scan(dir)
	require.NoError(t, err)
	return n
}

func scalar(t *testing.T, doc *content.Document, key string) string {
	t.Helper()
	v, ok := doc.Get(key)
	require.True(t, ok, "key %s", key)
	return v.Scalar
}

func TestPipeline_TranslatesAndSaves(t *testing.T) {
	node := langNode(t, map[string]string{
		"en_us.json": `{"a": "hello", "b": "press [x]", "n": 5, "empty": ""}`,
	})
	tr := upper()
	saver := newMemSaver()

	var (
		states   []State
		progress []Progress
	)
	p := New(Options{
		SourceLang: "en_us",
		Translator: tr,
		Saver:      saver,
		Policies:   DefaultPolicies(),
		OnState:    func(s State, _ *tree.Node) { states = append(states, s) },
		OnProgress: func(pr Progress) { progress = append(progress, pr) },
	})

	res, err := p.Run(context.Background(), []*tree.Node{node})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Targets)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 3, res.Translated)
	assert.Len(t, res.Saved, 1)
	assert.Equal(t, 1, tr.Calls())

	doc := saver.Only(t)
	assert.Equal(t, []string{"a", "b", "n", "empty"}, doc.Keys())
	assert.Equal(t, "HELLO", scalar(t, doc, "a"))
	assert.Equal(t, "PRESS [X]", scalar(t, doc, "b"))
	v, _ := doc.Get("n")
	assert.Equal(t, content.KindInteger, v.Kind)

	assert.Equal(t, []State{StateCollectingTargets, StateTranslating, StateSaving, StateIdle}, states)
	require.NotEmpty(t, progress)
	last := progress[len(progress)-1]
	assert.Equal(t, Progress{Done: 3, Total: 3, Percent: 100}, last)
}

func TestPipeline_RejectedEntryRetriedThenKept(t *testing.T) {
	node := langNode(t, map[string]string{
		"en_us.json": `{"a": "hello", "b": "press [x]"}`,
	})
	tr := &funcTranslator{fn: func(_ context.Context, text string) (string, error) {
		return strings.ReplaceAll(strings.ToUpper(text), "[X]", "[X"), nil
	}}
	saver := newMemSaver()

	p := New(Options{
		SourceLang: "en_us",
		Translator: tr,
		Saver:      saver,
		Policies:   Policies{DeselectUnmatchedChunk: true, MaxAttempts: 3},
	})

	res, err := p.Run(context.Background(), []*tree.Node{node})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Translated)
	assert.Equal(t, 3, tr.Calls())

	doc := saver.Only(t)
	assert.Equal(t, "HELLO", scalar(t, doc, "a"))
	assert.Equal(t, "press [x]", scalar(t, doc, "b"))
}

func TestPipeline_UnmatchedChunkDeselected(t *testing.T) {
	node := langNode(t, map[string]string{
		"en_us.lang": "a=one\nb=two\n",
	})
	tr := &funcTranslator{fn: func(context.Context, string) (string, error) {
		return "no markers here", nil
	}}
	saver := newMemSaver()

	p := New(Options{
		SourceLang: "en_us",
		Translator: tr,
		Saver:      saver,
		Policies:   DefaultPolicies(),
	})

	res, err := p.Run(context.Background(), []*tree.Node{node})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Translated)
	assert.Equal(t, 1, tr.Calls())

	doc := saver.Only(t)
	assert.Equal(t, "one", scalar(t, doc, "a"))
	assert.Equal(t, "two", scalar(t, doc, "b"))
}

func TestPipeline_UnmatchedPolicyOff(t *testing.T) {
	node := langNode(t, map[string]string{"en_us.lang": "a=one\n"})
	tr := &funcTranslator{fn: func(context.Context, string) (string, error) {
		return "no markers here", nil
	}}

	p := New(Options{
		SourceLang: "en_us",
		Translator: tr,
		Saver:      newMemSaver(),
		Policies:   Policies{MaxAttempts: 2},
	})

	_, err := p.Run(context.Background(), []*tree.Node{node})
	require.NoError(t, err)
	assert.Equal(t, 2, tr.Calls())
}

func TestPipeline_ChunksOfFifty(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 120; i++ {
		b.WriteString("key")
		b.WriteString(strings.Repeat("x", i))
		b.WriteString("=value\n")
	}
	node := langNode(t, map[string]string{"en_us.lang": b.String()})

	var sizes []int
	tr := &funcTranslator{fn: func(_ context.Context, text string) (string, error) {
		sizes = append(sizes, strings.Count(text, "\n")+1)
		return text, nil
	}}

	p := New(Options{SourceLang: "en_us", Translator: tr, Saver: newMemSaver(), Policies: DefaultPolicies()})
	res, err := p.Run(context.Background(), []*tree.Node{node})
	require.NoError(t, err)
	assert.Equal(t, 120, res.Translated)
	assert.Equal(t, []int{50, 50, 20}, sizes)
}

func TestPipeline_NothingToTranslate(t *testing.T) {
	node := langNode(t, map[string]string{"ru_ru.json": `{"a": "b"}`})
	p := New(Options{SourceLang: "en_us", Translator: upper(), Saver: newMemSaver()})

	res, err := p.Run(context.Background(), []*tree.Node{node})
	assert.True(t, errors.Is(err, ErrNothingToTranslate))
	require.Len(t, res.Errors, 1)
	assert.True(t, errors.Is(res.Errors[0], ErrSourceLanguageFileMissing))

	empty := langNode(t, map[string]string{"en_us.json": `{"a": ""}`})
	_, err = p.Run(context.Background(), []*tree.Node{empty})
	assert.True(t, errors.Is(err, ErrNothingToTranslate))
}

func TestPipeline_MalformedTargetSkipped(t *testing.T) {
	bad := langNode(t, map[string]string{"en_us.json": `{"a": `})
	good := langNode(t, map[string]string{"en_us.json": `{"a": "x"}`})
	saver := newMemSaver()

	var reported []string
	p := New(Options{
		SourceLang: "en_us",
		Translator: upper(),
		Saver:      saver,
		OnError:    func(format string, args ...any) { reported = append(reported, format) },
	})

	res, err := p.Run(context.Background(), []*tree.Node{bad, good})
	require.NoError(t, err)
	assert.Len(t, res.Saved, 1)
	require.Len(t, res.Errors, 1)
	assert.True(t, errors.Is(res.Errors[0], content.ErrMalformedContent))
	assert.NotEmpty(t, reported)
}

func TestPipeline_MissingContainerAborts(t *testing.T) {
	missing := &tree.Node{
		Name: "en_us.json",
		File: true,
		Loc:  source.Location{Path: filepath.Join(t.TempDir(), "gone", "en_us.json")},
	}
	saver := newMemSaver()
	p := New(Options{SourceLang: "en_us", Translator: upper(), Saver: saver})

	_, err := p.Run(context.Background(), []*tree.Node{missing})
	assert.True(t, errors.Is(err, source.ErrContainerNotFound))
	assert.Equal(t, 0, saver.Len())
}

func TestPipeline_CancelLeavesCurrentTargetUnsaved(t *testing.T) {
	first := langNode(t, map[string]string{"en_us.json": `{"a": "one"}`})
	second := langNode(t, map[string]string{"en_us.json": `{"b": "two"}`})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr := &funcTranslator{fn: func(ctx context.Context, text string) (string, error) {
		if strings.Contains(text, "two") {
			cancel()
			<-ctx.Done()
			return "", ctx.Err()
		}
		return strings.ToUpper(text), nil
	}}
	saver := newMemSaver()

	var lastState State = -1
	p := New(Options{
		SourceLang: "en_us",
		Translator: tr,
		Saver:      saver,
		OnState:    func(s State, _ *tree.Node) { lastState = s },
	})

	res, err := p.Run(ctx, []*tree.Node{first, second})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Len(t, res.Saved, 1)
	assert.Equal(t, 1, saver.Len())
	assert.Equal(t, StateIdle, lastState)
}

func TestPipeline_SharedStoreAndLoop(t *testing.T) {
	node := langNode(t, map[string]string{"en_us.json": `{"a": "one", "b": "two"}`})

	st := store.New()
	loop := store.NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	notified := 0
	st.Subscribe(func() { notified++ })

	p := New(Options{
		SourceLang: "en_us",
		Translator: upper(),
		Saver:      newMemSaver(),
		Store:      st,
		Loop:       loop,
	})
	_, err := p.Run(ctx, []*tree.Node{node})
	require.NoError(t, err)

	var got []string
	require.NoError(t, loop.Do(ctx, func() {
		for _, e := range st.Entries() {
			got = append(got, e.Translated)
		}
	}))
	assert.Equal(t, []string{"ONE", "TWO"}, got)
	assert.Equal(t, 1, notified)
	assert.Equal(t, 0, st.CountSelected())
}

func TestPipeline_RequiresCollaborators(t *testing.T) {
	_, err := New(Options{SourceLang: "en_us"}).Run(context.Background(), nil)
	assert.Error(t, err)
}

func TestProgressReporter_Throttles(t *testing.T) {
	var got []Progress
	r := newProgressReporter(func(p Progress) { got = append(got, p) }, time.Hour, 10)

	r.add(0, true)
	r.add(3, false)
	r.add(3, false)
	r.add(4, true)

	require.Len(t, got, 2)
	assert.Equal(t, Progress{Done: 0, Total: 10, Percent: 0}, got[0])
	assert.Equal(t, Progress{Done: 10, Total: 10, Percent: 100}, got[1])
}

func TestPipeline_LogsLoadedFiles(t *testing.T) {
	node := langNode(t, map[string]string{"en_us.lang": "a=one\n"})

	var logs []string
	p := New(Options{
		SourceLang: "en_us",
		Translator: upper(),
		Saver:      newMemSaver(),
		Policies:   DefaultPolicies(),
		OnLog: func(format string, args ...any) {
			logs = append(logs, fmt.Sprintf(format, args...))
		},
	})

	_, err := p.Run(context.Background(), []*tree.Node{node})
	require.NoError(t, err)
	assert.Contains(t, logs, "loaded 1 of 1 files")
}
