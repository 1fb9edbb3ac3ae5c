// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package audit drives the liveness checker over a candidate set.
package audit

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/linkaudit/pkg/types"
)

// LinkChecker checks one link and always returns a terminal outcome.
type LinkChecker interface {
	Check(ctx context.Context, link types.Link) types.CheckOutcome
}

// Options configures a run.
type Options struct {
	// Workers bounds concurrent checks (default 1, sequential).
	Workers int

	// Deadline bounds the whole run. Zero means none.
	Deadline time.Duration

	// Verbose prints one line per link before it is checked.
	Verbose bool

	Output io.Writer
	Logger *zap.Logger
}

// Result holds the outcomes of a run in candidate order.
type Result struct {
	Outcomes []types.CheckOutcome
	Passed   int
	Failed   int
	Elapsed  time.Duration
}

// Total returns the number of links checked.
func (r Result) Total() int {
	return r.Passed + r.Failed
}

// HasFailures reports whether any link failed.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

// Run checks every link and returns exactly one outcome per link, in input
// order. Checks are independent: a failing link never affects another.
// When ctx is cancelled or the deadline passes, links that were not started
// get an outcome carrying the context error.
func Run(ctx context.Context, links []types.Link, checker LinkChecker, opts Options) Result {
	start := time.Now()
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Output == nil {
		opts.Output = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Deadline)
		defer cancel()
	}

	out := asSync(opts.Output)
	outcomes := make([]types.CheckOutcome, len(links))

	g := new(errgroup.Group)
	g.SetLimit(opts.Workers)
	for i, link := range links {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i] = notChecked(link, err)
				return nil
			}
			if opts.Verbose {
				out.printf("[%d/%d] Checking %s (from %s)\n", i+1, len(links), link.URL, link.Source)
			}
			outcomes[i] = checker.Check(ctx, link)
			return nil
		})
	}
	_ = g.Wait()

	res := Result{Outcomes: outcomes, Elapsed: time.Since(start)}
	for _, o := range outcomes {
		if o.IsIssue() {
			res.Failed++
		} else {
			res.Passed++
		}
	}
	opts.Logger.Debug("audit finished",
		zap.Int("links", len(links)),
		zap.Int("passed", res.Passed),
		zap.Int("failed", res.Failed),
		zap.Int("workers", opts.Workers),
		zap.Duration("elapsed", res.Elapsed))
	return res
}

func notChecked(link types.Link, err error) types.CheckOutcome {
	return types.CheckOutcome{
		URL:               link.URL,
		Source:            link.Source,
		ReferencedProduct: link.ReferencedProduct,
		Error:             fmt.Sprintf("not checked: %v", err),
	}
}

// syncWriter serializes writes from concurrent checks.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *syncWriter) printf(format string, args ...any) {
	fmt.Fprintf(s, format, args...)
}

// SyncWriter wraps w so that concurrent checkers can share it. Passing the
// result to both the checker and Run keeps their lines from interleaving.
func SyncWriter(w io.Writer) io.Writer {
	return asSync(w)
}

func asSync(w io.Writer) *syncWriter {
	if sw, ok := w.(*syncWriter); ok {
		return sw
	}
	return &syncWriter{w: w}
}
