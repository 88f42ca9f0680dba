package playback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lixenwraith/vi-replay/replaylog"
	"github.com/lixenwraith/vi-replay/timeline"
)

// LoadFunc turns a source into a reconstructed timeline
type LoadFunc func(ctx context.Context, src string) (*timeline.Result, error)

// LoadResult is delivered once per Load call
type LoadResult struct {
	Generation uint64
	Source     string
	Result     *timeline.Result
	Err        error
	Elapsed    time.Duration
}

// Loader runs loads in the background; only the latest load may be applied
type Loader struct {
	load    LoadFunc
	parent  context.Context
	results chan LoadResult
	done    chan struct{}

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	closeOnce  sync.Once
	wg         sync.WaitGroup
}

// NewLoader creates a loader whose loads are bounded by parent
func NewLoader(parent context.Context, load LoadFunc) *Loader {
	return &Loader{
		load:    load,
		parent:  parent,
		results: make(chan LoadResult, 4),
		done:    make(chan struct{}),
	}
}

// Load starts a new load, cancelling any in-flight one, and returns its generation
func (l *Loader) Load(src string) uint64 {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.generation++
	gen := l.generation
	ctx, cancel := context.WithCancel(l.parent)
	l.cancel = cancel
	l.mu.Unlock()

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer cancel()

		start := time.Now()
		res, err := l.load(ctx, src)
		out := LoadResult{
			Generation: gen,
			Source:     src,
			Result:     res,
			Err:        err,
			Elapsed:    time.Since(start),
		}

		select {
		case l.results <- out:
		case <-l.done:
		}
	}()
	return gen
}

// Results delivers finished loads, including superseded ones
func (l *Loader) Results() <-chan LoadResult {
	return l.results
}

// Current reports whether res belongs to the most recent Load call
func (l *Loader) Current(res LoadResult) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return res.Generation == l.generation
}

// Close cancels the in-flight load and waits for workers to exit
func (l *Loader) Close() {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		if l.cancel != nil {
			l.cancel()
		}
		l.mu.Unlock()
		close(l.done)
		l.wg.Wait()
	})
}

// LoadSource opens, decodes and reconstructs a replay in one step
func LoadSource(ctx context.Context, src string, opts ...timeline.Option) (*timeline.Result, error) {
	rc, err := replaylog.Open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	log, err := replaylog.DecodeContext(ctx, rc)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", src, err)
	}
	return timeline.Reconstruct(log, opts...), nil
}
