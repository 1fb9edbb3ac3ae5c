// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package checker verifies that a single outbound link still resolves.
//
// A check is a small state machine. Each attempt starts in StateProbing,
// where the link is probed and redirects are followed up to the redirect
// budget. A transient result (5xx or a timeout-class transport error) moves the
// machine to StateBackoff while retries remain; the wait before attempt n is
// 2×n backoff units. Everything else moves it to StateDone. The machine
// performs at most RetryBudget+1 probes.
package checker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/linkaudit/pkg/types"
)

// State is a step of the check state machine.
type State int

const (
	StateProbing State = iota
	StateBackoff
	StateDone
)

func (s State) String() string {
	switch s {
	case StateProbing:
		return "probing"
	case StateBackoff:
		return "backoff"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Verdict classifies the result of one attempt.
type Verdict int

const (
	// VerdictLive is a final status in [200,400).
	VerdictLive Verdict = iota
	// VerdictTransient is a 5xx status or a timeout-class transport error.
	VerdictTransient
	// VerdictBroken is any other status or transport error.
	VerdictBroken
)

// Classify returns the verdict for a final status or transport error.
func Classify(status int, err error) Verdict {
	if err != nil {
		if IsTimeout(err) {
			return VerdictTransient
		}
		return VerdictBroken
	}
	switch {
	case status >= 500 && status < 600:
		return VerdictTransient
	case status >= 200 && status < 400:
		return VerdictLive
	}
	return VerdictBroken
}

// IsTimeout reports whether err is a timeout. Expiry errors that are not
// timeouts, such as an expired TLS certificate, do not count.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "timed out") ||
		strings.Contains(msg, "execution expired") ||
		strings.Contains(msg, "deadline exceeded")
}

// Backoff returns the wait before retry number attempt (1-based).
func Backoff(attempt int, unit time.Duration) time.Duration {
	return time.Duration(2*attempt) * unit
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Checker runs liveness checks.
type Checker struct {
	prober Prober
	cfg    types.CheckConfig
	out    io.Writer
	logger *zap.Logger
	sleep  Sleeper
}

// Option configures a Checker.
type Option func(*Checker)

// WithOutput sets where progress glyphs and verbose lines are written.
func WithOutput(w io.Writer) Option {
	return func(c *Checker) {
		if w != nil {
			c.out = w
		}
	}
}

// WithLogger sets the logger for per-attempt debug records.
func WithLogger(l *zap.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSleeper replaces the backoff wait. Tests use it to record waits.
func WithSleeper(s Sleeper) Option {
	return func(c *Checker) {
		if s != nil {
			c.sleep = s
		}
	}
}

// New creates a Checker. Unset fields of cfg other than RetryBudget take
// their defaults; a zero RetryBudget means no retries.
func New(prober Prober, cfg types.CheckConfig, opts ...Option) *Checker {
	c := &Checker{
		prober: prober,
		cfg:    cfg.WithDefaults(),
		out:    io.Discard,
		logger: zap.NewNop(),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the effective configuration.
func (c *Checker) Config() types.CheckConfig {
	return c.cfg
}

// machine holds the state of one check.
type machine struct {
	link    types.Link
	state   State
	retries int
	probes  int
	wait    time.Duration

	status    int
	redirects int
	err       error
}

// Check probes link until it reaches a terminal outcome. It never returns
// an error: every failure is captured in the outcome.
func (c *Checker) Check(ctx context.Context, link types.Link) types.CheckOutcome {
	m := &machine{link: link, state: StateProbing}

	// Each attempt is at most one Probing and one Backoff transition.
	limit := 2*(c.cfg.RetryBudget+1) + 1
	for steps := 0; m.state != StateDone && steps < limit; steps++ {
		switch m.state {
		case StateProbing:
			c.probe(ctx, m)
		case StateBackoff:
			c.backoff(ctx, m)
		}
	}
	return c.outcome(m)
}

func (c *Checker) probe(ctx context.Context, m *machine) {
	if err := ctx.Err(); err != nil {
		m.err, m.status = err, 0
		m.state = StateDone
		return
	}

	m.probes++
	m.status, m.redirects, m.err = c.follow(ctx, m.link.URL)

	verdict := Classify(m.status, m.err)
	if ctx.Err() != nil && m.err != nil {
		// The run was cancelled; a timeout here is not transient.
		verdict = VerdictBroken
	}
	c.logger.Debug("probe",
		zap.String("url", m.link.URL),
		zap.Int("attempt", m.probes),
		zap.Int("status", m.status),
		zap.Int("redirects", m.redirects),
		zap.Error(m.err))

	c.glyph(verdict == VerdictLive)

	if verdict == VerdictTransient && m.retries < c.cfg.RetryBudget {
		m.retries++
		m.wait = Backoff(m.retries, c.cfg.BackoffUnit)
		if c.cfg.Verbose {
			if m.err != nil {
				fmt.Fprintf(c.out, "Retrying %s (%d/%d)...\n", m.link.URL, m.retries, c.cfg.RetryBudget)
			} else {
				fmt.Fprintf(c.out, "Got %d for %s, retrying (%d/%d)...\n", m.status, m.link.URL, m.retries, c.cfg.RetryBudget)
			}
		}
		m.state = StateBackoff
		return
	}
	m.state = StateDone
}

func (c *Checker) backoff(ctx context.Context, m *machine) {
	if err := c.sleep(ctx, m.wait); err != nil {
		m.err = fmt.Errorf("retry aborted: %w", err)
		m.state = StateDone
		return
	}
	m.state = StateProbing
}

// follow probes rawURL and follows redirects up to the redirect budget.
// When the budget is exhausted the last response status is returned.
func (c *Checker) follow(ctx context.Context, rawURL string) (status, hops int, err error) {
	current := rawURL
	resp, err := c.prober.Probe(ctx, current)
	if err != nil {
		return 0, 0, err
	}

	for isRedirect(resp.Status) && hops < c.cfg.RedirectBudget && resp.Location != "" {
		next, err := resolve(current, resp.Location)
		if err != nil {
			return 0, hops, err
		}
		if c.cfg.Verbose {
			fmt.Fprintf(c.out, "Following redirect to %s\n", next)
		}
		resp, err = c.prober.Probe(ctx, next)
		if err != nil {
			return 0, hops, err
		}
		current = next
		hops++
	}
	return resp.Status, hops, nil
}

func (c *Checker) glyph(live bool) {
	switch {
	case c.cfg.Verbose && live:
		fmt.Fprint(c.out, "✅ ")
	case c.cfg.Verbose:
		fmt.Fprint(c.out, "❌ ")
	case live:
		fmt.Fprint(c.out, ".")
	default:
		fmt.Fprint(c.out, "E")
	}
}

func (c *Checker) outcome(m *machine) types.CheckOutcome {
	o := types.CheckOutcome{
		URL:               m.link.URL,
		Source:            m.link.Source,
		ReferencedProduct: m.link.ReferencedProduct,
		Attempts:          m.probes,
		Redirects:         m.redirects,
	}
	if m.status != 0 {
		o.Status = types.IntPtr(m.status)
	}

	switch {
	case m.err != nil:
		o.Error = m.err.Error()
	case m.status >= 200 && m.status < 400:
	default:
		o.Error = fmt.Sprintf("HTTP error: %d", m.status)
	}

	if c.cfg.Verbose {
		if o.IsIssue() {
			fmt.Fprintf(c.out, "\n%s - %s: %s\n", m.link.URL, o.StatusText(), o.Error)
		} else {
			fmt.Fprintf(c.out, "\n%s - Status: %d\n", m.link.URL, m.status)
		}
	}
	return o
}

func isRedirect(status int) bool {
	return status >= 300 && status < 400
}

// resolve interprets location relative to the current request URL.
func resolve(current, location string) (string, error) {
	base, err := url.Parse(current)
	if err != nil {
		return "", fmt.Errorf("parsing %q: %w", current, err)
	}
	ref, err := url.Parse(strings.TrimSpace(location))
	if err != nil {
		return "", fmt.Errorf("invalid redirect location %q: %w", location, err)
	}
	return base.ResolveReference(ref).String(), nil
}
