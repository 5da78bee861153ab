package semantic

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ionplatox-blip/rnd-map-moscow-2025/core"
)

// State names one phase of the semantic search lifecycle.
type State int

const (
	// StateIdle means no semantic search has run yet.
	StateIdle State = iota

	// StateLoading means a request is in flight and the result buffer is
	// cleared.
	StateLoading

	// StateSuccess means the last request answered and its results are the
	// active set.
	StateSuccess

	// StateError means the last request failed, timed out, or answered with
	// an unusable body; the result set is explicitly empty.
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// DefaultTimeout is the hard ceiling on one semantic search invocation.
const DefaultTimeout = 60 * time.Second

// Orchestrator manages the asynchronous lifecycle of semantic search
// invocations: it owns the in-flight request, aborts it at the timeout, and
// retains the last result set until the next invocation.
//
// Invocations are not de-duplicated. A second Invoke while one request is
// outstanding starts a second request, and whichever response lands last
// overwrites the result set.
type Orchestrator struct {
	searcher Searcher
	timeout  time.Duration
	logger   *slog.Logger
	onUpdate func()

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu             sync.Mutex
	state          State
	results        []core.SemanticResult
	rewrittenQuery string
	query          string
	lastErr        error
}

// OrchestratorOption is a functional option for configuring an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithTimeout sets the per-invocation abort ceiling.
func WithTimeout(timeout time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithLogger sets the logger used for lifecycle diagnostics.
func WithLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithUpdateHook registers a callback fired after every state change. The
// callback runs outside the orchestrator's lock, so it may read state back.
func WithUpdateHook(hook func()) OrchestratorOption {
	return func(o *Orchestrator) {
		o.onUpdate = hook
	}
}

// NewOrchestrator creates an orchestrator around the given searcher.
func NewOrchestrator(searcher Searcher, opts ...OrchestratorOption) (*Orchestrator, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}

	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		searcher: searcher,
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
		ctx:      ctx,
		cancel:   cancel,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Invoke starts a semantic search for the query. It transitions to loading
// immediately, clears the result buffer, and returns without waiting; the
// outcome arrives through State and Results once the request settles.
func (o *Orchestrator) Invoke(query string) {
	o.mu.Lock()
	o.state = StateLoading
	o.results = nil
	o.rewrittenQuery = ""
	o.query = query
	o.lastErr = nil
	o.mu.Unlock()
	o.notify()

	o.logger.Debug("semantic search invoked", "query", query)

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()

		ctx, cancel := context.WithTimeout(o.ctx, o.timeout)
		defer cancel()

		resp, err := o.searcher.Search(ctx, query)

		o.mu.Lock()
		if err != nil {
			o.state = StateError
			// Explicitly empty, not nil: the error outcome must be
			// distinguishable from a still-loading buffer.
			o.results = []core.SemanticResult{}
			o.rewrittenQuery = ""
			o.lastErr = err
		} else {
			o.state = StateSuccess
			o.results = resp.Results
			if o.results == nil {
				o.results = []core.SemanticResult{}
			}
			o.rewrittenQuery = resp.RewrittenQuery
		}
		o.mu.Unlock()
		o.notify()

		if err != nil {
			o.logger.Warn("semantic search failed", "query", query, "err", err)
			return
		}
		o.logger.Debug("semantic search settled", "query", query, "results", len(resp.Results))
	}()
}

// State returns the current lifecycle phase.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Results returns the retained result set. It is nil while idle or loading
// and non-nil, possibly empty, after the request settles. The returned slice
// must not be mutated.
func (o *Orchestrator) Results() []core.SemanticResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.results
}

// RewrittenQuery returns the service's rewritten form of the last query, or
// an empty string when rewriting was off or the call failed.
func (o *Orchestrator) RewrittenQuery() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.rewrittenQuery
}

// Query returns the query of the most recent invocation.
func (o *Orchestrator) Query() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.query
}

// Err returns the failure of the last invocation, or nil.
func (o *Orchestrator) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// Close aborts any in-flight request and waits for its goroutine to settle.
// The orchestrator must not be used after Close.
func (o *Orchestrator) Close() error {
	o.cancel()
	o.wg.Wait()
	return nil
}

func (o *Orchestrator) notify() {
	if o.onUpdate != nil {
		o.onUpdate()
	}
}
