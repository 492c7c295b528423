package translate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/minios-linux/mclocalizer/codec"
	"github.com/minios-linux/mclocalizer/content"
	"github.com/minios-linux/mclocalizer/source"
	"github.com/minios-linux/mclocalizer/store"
	"github.com/minios-linux/mclocalizer/tree"
)

// ErrNothingToTranslate is returned when no target holds a selected entry.
var ErrNothingToTranslate = errors.New("nothing to translate")

// State is the phase a run is in.
type State int

const (
	StateIdle State = iota
	StateCollectingTargets
	StateTranslating
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCollectingTargets:
		return "collecting targets"
	case StateTranslating:
		return "translating"
	case StateSaving:
		return "saving"
	default:
		return "unknown"
	}
}

// Progress is a snapshot of run progress.
type Progress struct {
	// Done counts entries that left the selected set.
	Done int
	// Total is the number of selected entries across all targets at start.
	Total int
	// Percent is Done/Total in [0, 100].
	Percent float64
}

// Saver persists a translated document for the target it was loaded from
// and returns where it was written.
type Saver interface {
	Save(ctx context.Context, target source.Location, doc *content.Document) (string, error)
}

// Policies are the workarounds for upstream quirks, each independently
// switchable.
type Policies struct {
	// DeselectUnmatchedChunk deselects every entry of a chunk whose response
	// carried no marker that maps to the chunk.
	DeselectUnmatchedChunk bool
	// MaxAttempts stops re-sending an entry after this many rejected
	// translations within one run. The entry stays selected. 0 means no
	// limit.
	MaxAttempts int
}

// DefaultPolicies returns the policies used by the CLI.
func DefaultPolicies() Policies {
	return Policies{DeselectUnmatchedChunk: true, MaxAttempts: 3}
}

// DefaultProgressInterval is the minimum gap between progress reports.
const DefaultProgressInterval = 300 * time.Millisecond

// Options configures a Pipeline.
type Options struct {
	// SourceLang is the Minecraft locale of the files to translate.
	SourceLang string
	// TargetLang is used in log lines only; the translator carries the
	// instruction.
	TargetLang string

	Translator Translator
	Saver      Saver

	// Store receives the entries of the target being translated. A private
	// store is used when nil.
	Store *store.Store
	// Loop serializes entry mutations. When nil the pipeline runs its own
	// loop for the duration of Run.
	Loop *store.Loop

	Policies Policies
	// ProgressInterval throttles OnProgress. DefaultProgressInterval when 0.
	ProgressInterval time.Duration

	// OnState is called on state changes with the source node being
	// processed, nil outside per-target phases.
	OnState func(state State, node *tree.Node)
	// OnProgress receives throttled progress. The first and the final
	// report are always delivered.
	OnProgress func(p Progress)
	// OnLog receives informational messages.
	OnLog func(format string, args ...any)
	// OnError receives non-fatal errors.
	OnError func(format string, args ...any)
	// Verbose enables per-chunk logs.
	Verbose bool
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) logError(format string, args ...any) {
	if o.OnError != nil {
		o.OnError(format, args...)
	}
}

func (o *Options) state(s State, node *tree.Node) {
	if o.OnState != nil {
		o.OnState(s, node)
	}
}

// Result summarizes a run.
type Result struct {
	// Targets is the number of resolved source-language files.
	Targets int
	// Saved lists written destinations in order.
	Saved []string
	// Translated counts accepted translations.
	Translated int
	// Total is the number of selected entries at start.
	Total int
	// Errors collects non-fatal errors.
	Errors []error
}

// Pipeline translates the selected entries of source-language files and
// saves the results.
type Pipeline struct {
	opts Options
}

// New returns a pipeline. Translator and Saver are required by Run.
func New(opts Options) *Pipeline {
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = DefaultProgressInterval
	}
	return &Pipeline{opts: opts}
}

// loadedTarget is a resolved file with its decoded entries.
type loadedTarget struct {
	pair     Pair
	entries  []*store.Entry
	comments []string
	selected int
}

// progressReporter throttles progress reports.
type progressReporter struct {
	fn      func(Progress)
	limiter *rate.Limiter
	done    int
	total   int
	sent    bool
}

func newProgressReporter(fn func(Progress), interval time.Duration, total int) *progressReporter {
	return &progressReporter{
		fn:      fn,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		total:   total,
	}
}

func (r *progressReporter) add(n int, force bool) {
	r.done += n
	if r.done > r.total {
		r.done = r.total
	}
	if r.fn == nil {
		return
	}
	if !r.limiter.Allow() && !force && r.sent {
		return
	}
	r.sent = true
	pct := 100.0
	if r.total > 0 {
		pct = float64(r.done) * 100 / float64(r.total)
	}
	r.fn(Progress{Done: r.done, Total: r.total, Percent: pct})
}

// Run translates every target resolved from nodes.
//
// Per-node, per-load, per-chunk and per-save errors are reported and
// collected in Result.Errors; the run continues. Cancellation and a missing
// container abort the run. A target is only saved after all of its entries
// have been processed, so cancellation never leaves a partial write for the
// current target.
func (p *Pipeline) Run(ctx context.Context, nodes []*tree.Node) (Result, error) {
	o := &p.opts
	var result Result

	if o.Translator == nil {
		return result, errors.New("translate: no translator configured")
	}
	if o.Saver == nil {
		return result, errors.New("translate: no saver configured")
	}

	defer o.state(StateIdle, nil)

	o.state(StateCollectingTargets, nil)
	pairs, errs := CollectPairs(nodes, o.SourceLang)
	for _, err := range errs {
		o.logError("%v", err)
		result.Errors = append(result.Errors, err)
	}
	result.Targets = len(pairs)
	if len(pairs) == 0 {
		return result, ErrNothingToTranslate
	}

	targets, err := p.load(ctx, pairs, &result)
	if err != nil {
		return result, err
	}
	for _, t := range targets {
		result.Total += t.selected
	}
	if result.Total == 0 {
		return result, ErrNothingToTranslate
	}

	st := o.Store
	if st == nil {
		st = store.New()
	}

	loop := o.Loop
	if loop == nil {
		loop = store.NewLoop()
		loopCtx, stop := context.WithCancel(ctx)
		loopDone := make(chan struct{})
		go func() {
			defer close(loopDone)
			_ = loop.Run(loopCtx)
		}()
		defer func() {
			stop()
			<-loopDone
		}()
	}

	progress := newProgressReporter(o.OnProgress, o.ProgressInterval, result.Total)
	progress.add(0, true)

	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if t.selected == 0 {
			continue
		}

		loc := t.pair.Target.Loc
		o.state(StateTranslating, t.pair.Source)
		o.log("translating %s (%d entries)", loc, t.selected)

		if err := loop.Do(ctx, func() { st.ReplaceAll(t.entries) }); err != nil {
			return result, err
		}

		accepted, err := p.translateTarget(ctx, st, loop, progress)
		result.Translated += accepted
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			err = fmt.Errorf("translating %s: %w", loc, err)
			o.logError("%v", err)
			result.Errors = append(result.Errors, err)
			continue
		}

		o.state(StateSaving, t.pair.Source)
		var doc *content.Document
		if err := loop.Do(ctx, func() { doc = store.ToDocument(st.Entries(), t.comments) }); err != nil {
			return result, err
		}
		dest, err := o.Saver.Save(ctx, loc, doc)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			err = fmt.Errorf("saving %s: %w", loc, err)
			o.logError("%v", err)
			result.Errors = append(result.Errors, err)
			continue
		}
		o.log("saved %s", dest)
		result.Saved = append(result.Saved, dest)
	}

	progress.add(0, true)
	return result, nil
}

// load reads and decodes every target once, counting selected entries.
func (p *Pipeline) load(ctx context.Context, pairs []Pair, result *Result) ([]loadedTarget, error) {
	o := &p.opts
	cache := source.NewCache()

	var targets []loadedTarget
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		loc := pair.Target.Loc
		src, err := source.ForLocation(loc)
		if err != nil {
			o.logError("%v", err)
			result.Errors = append(result.Errors, err)
			continue
		}

		text, err := cache.Read(ctx, src)
		if err != nil {
			if errors.Is(err, source.ErrContainerNotFound) || ctx.Err() != nil {
				return nil, err
			}
			o.logError("%v", err)
			result.Errors = append(result.Errors, err)
			continue
		}

		doc, _, err := codec.DecodeNamed(loc.Name(), text)
		if err != nil {
			err = fmt.Errorf("loading %s: %w", loc, err)
			o.logError("%v", err)
			result.Errors = append(result.Errors, err)
			continue
		}

		entries := store.FromDocument(doc)
		n := 0
		for _, e := range entries {
			if e.Selected {
				n++
			}
		}
		targets = append(targets, loadedTarget{
			pair:     pair,
			entries:  entries,
			comments: doc.Comments,
			selected: n,
		})
	}
	o.log("loaded %d of %d files", cache.Len(), len(pairs))
	return targets, nil
}

// translateTarget sends chunks of the store's selected entries until none
// are eligible. It returns the number of accepted translations.
func (p *Pipeline) translateTarget(ctx context.Context, st *store.Store, loop *store.Loop, progress *progressReporter) (int, error) {
	o := &p.opts
	attempts := make(map[*store.Entry]int)
	exhausted := 0
	accepted := 0
	chunkNo := 0

	for {
		if err := ctx.Err(); err != nil {
			return accepted, err
		}

		var chunk []*store.Entry
		if err := loop.Do(ctx, func() {
			for _, e := range st.Selected() {
				if o.Policies.MaxAttempts > 0 && attempts[e] >= o.Policies.MaxAttempts {
					continue
				}
				chunk = append(chunk, e)
				if len(chunk) == ChunkSize {
					break
				}
			}
		}); err != nil {
			return accepted, err
		}
		if len(chunk) == 0 {
			break
		}
		chunkNo++

		texts := make([]string, len(chunk))
		for i, e := range chunk {
			texts[i] = e.Original
		}

		resp, err := o.Translator.Translate(ctx, EncodeBatch(texts))
		if err != nil {
			return accepted, err
		}
		marked := DecodeBatch(resp)

		var matched, ok, dropped, gaveUp int
		if err := loop.Do(ctx, func() {
			for _, m := range marked {
				if m.Index < 0 || m.Index >= len(chunk) {
					continue
				}
				matched++
				e := chunk[m.Index]
				if !e.Selected {
					continue
				}
				if IsValidTranslation(e.Original, m.Text) {
					e.Translated = m.Text
					e.Selected = false
					ok++
				}
			}

			if matched == 0 && o.Policies.DeselectUnmatchedChunk {
				for _, e := range chunk {
					if e.Selected {
						e.Selected = false
						dropped++
					}
				}
				return
			}

			for _, e := range chunk {
				if !e.Selected {
					continue
				}
				attempts[e]++
				if o.Policies.MaxAttempts > 0 && attempts[e] == o.Policies.MaxAttempts {
					gaveUp++
				}
			}
		}); err != nil {
			return accepted, err
		}

		accepted += ok
		exhausted += gaveUp
		if o.Verbose {
			o.log("chunk %d: %d sent, %d matched, %d accepted", chunkNo, len(chunk), matched, ok)
		}
		if dropped > 0 {
			o.logError("chunk %d: response carried no markers, %d entries deselected", chunkNo, dropped)
		}
		progress.add(ok+dropped+gaveUp, false)
	}

	if exhausted > 0 {
		o.logError("%d entries kept their original text after %d rejected translations", exhausted, o.Policies.MaxAttempts)
	}
	return accepted, nil
}
