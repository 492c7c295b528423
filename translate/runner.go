package translate

import (
	"context"
	"sync"

	"github.com/minios-linux/mclocalizer/tree"
)

// Outcome is the final result of a run started by a Runner.
type Outcome struct {
	Result Result
	Err    error
}

// Runner keeps at most one pipeline run active. Starting a run cancels the
// previous one and waits for it to unwind first.
type Runner struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Start launches p.Run in the background. The returned channel receives
// exactly one Outcome and is then closed.
func (r *Runner) Start(ctx context.Context, p *Pipeline, nodes []*tree.Node) <-chan Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	out := make(chan Outcome, 1)
	r.cancel, r.done = cancel, done

	go func() {
		defer close(done)
		defer cancel()
		res, err := p.Run(runCtx, nodes)
		out <- Outcome{Result: res, Err: err}
		close(out)
	}()

	return out
}

// Cancel stops the active run, if any, and waits for it to return.
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *Runner) stopLocked() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
	r.cancel, r.done = nil, nil
}
