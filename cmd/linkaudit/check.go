// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/linkaudit/internal/audit"
	"github.com/pdiddy/linkaudit/internal/checker"
	"github.com/pdiddy/linkaudit/internal/corpus"
	"github.com/pdiddy/linkaudit/internal/extract"
	"github.com/pdiddy/linkaudit/internal/notify"
	"github.com/pdiddy/linkaudit/internal/report"
	"github.com/pdiddy/linkaudit/internal/store"
	"github.com/pdiddy/linkaudit/pkg/types"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check every outbound link and write the issue report",
	Long: `Check scans the corpus for outbound links, probes each one, prints a
summary, and writes the issue report (also when there are no issues).

A link is live when it answers 2xx or 3xx after following up to the
redirect budget. 5xx responses and timeouts are retried up to the retry
budget with a growing backoff. Any other status or transport error is an
issue. With --notify the report is sent to the configured recipient when
there are issues; missing credentials skip the notification.

Exits 0 when every link is live and 1 otherwise.`,
	RunE: runCheck,
}

// auditDeps holds the collaborators of one audit run.
type auditDeps struct {
	out    io.Writer
	logger *zap.Logger
	creds  notify.CredentialProvider
	prober checker.Prober
	sleep  checker.Sleeper
	now    func() time.Time
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if email, _ := cmd.Flags().GetBool("email"); email {
		cfg.Check.NotifyEnabled = true
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	return checkExit(runAudit(ctx, cfg, auditDeps{
		out:    cmd.OutOrStdout(),
		logger: logger,
		creds:  credentials,
		prober: checker.NewHTTPProber(cfg.Check.HTTPConfig),
	}))
}

// checkExit maps an audit result to the command error: setup failures pass
// through, issues become errIssuesFound, and a clean run is nil.
func checkExit(rep types.Report, err error) error {
	if err != nil {
		return err
	}
	if !rep.AllClear {
		return errIssuesFound
	}
	return nil
}

// runAudit extracts the candidate links, checks them, and dispatches the
// report. Only configuration, corpus, and report-writing failures are
// returned; link failures are recorded in the report.
func runAudit(ctx context.Context, cfg types.Config, deps auditDeps) (types.Report, error) {
	out := audit.SyncWriter(deps.out)
	log := deps.logger
	if log == nil {
		log = zap.NewNop()
	}
	if deps.now == nil {
		deps.now = time.Now
	}

	fmt.Fprintln(out, "Amazon Link Checker")
	fmt.Fprintln(out, "===================")
	if cfg.Check.NotifyEnabled {
		fmt.Fprintln(out, "Email reporting enabled")
	}

	dir, err := corpus.NewDir(cfg.Corpus)
	if err != nil {
		return types.Report{}, err
	}
	dir.OnSkip = func(path string, err error) {
		log.Warn("skipping unreadable document", zap.String("path", path), zap.Error(err))
	}

	fmt.Fprintln(out, "Scanning repository for Amazon links...")
	opts, err := extract.OptionsFromConfig(cfg.Corpus, log)
	if err != nil {
		return types.Report{}, err
	}
	found, err := extract.Extract(dir, opts)
	if err != nil {
		return types.Report{}, err
	}
	links := found.Candidates.Links()
	fmt.Fprintf(out, "Found %d Amazon links to check.\n", len(links))
	log.Debug("extraction complete",
		zap.Int("occurrences", found.Found),
		zap.Int("duplicates", found.Duplicates()),
		zap.Int("dangling", len(found.Dangling)))

	checkerOpts := []checker.Option{checker.WithOutput(out), checker.WithLogger(log)}
	if deps.sleep != nil {
		checkerOpts = append(checkerOpts, checker.WithSleeper(deps.sleep))
	}
	chk := checker.New(deps.prober, cfg.Check, checkerOpts...)

	mode := ""
	if cfg.Check.Verbose {
		mode = " (verbose mode)"
	}
	fmt.Fprintf(out, "Checking links%s:\n", mode)
	result := audit.Run(ctx, links, chk, audit.Options{
		Workers:  cfg.Check.Workers,
		Deadline: cfg.Check.Deadline,
		Verbose:  cfg.Check.Verbose,
		Output:   out,
		Logger:   log,
	})
	fmt.Fprintln(out, "\nLink check completed.")
	log.Debug("audit complete",
		zap.Int("passed", result.Passed),
		zap.Int("failed", result.Failed),
		zap.Duration("elapsed", result.Elapsed))

	rep := report.Build(result.Outcomes, deps.now())
	report.WriteSummary(out, rep)

	if err := report.Write(cfg.Report.Path, cfg.Report.Format, rep); err != nil {
		return rep, err
	}
	fmt.Fprintf(out, "Report saved to %s\n", cfg.Report.Path)

	if cfg.Report.SummaryPath != "" {
		if err := writeMarkdownSummary(cfg.Report.SummaryPath, rep); err != nil {
			return rep, err
		}
	}

	// The report is final at this point; an interrupt must not lose it.
	finish := context.WithoutCancel(ctx)

	if cfg.Report.StorePath != "" {
		if err := saveRun(finish, cfg.Report.StorePath, rep, log); err != nil {
			return rep, err
		}
	}

	if cfg.Check.NotifyEnabled && !rep.AllClear {
		sendNotification(finish, out, cfg.Notify, deps.creds, rep, log)
	}
	return rep, nil
}

func writeMarkdownSummary(path string, rep types.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating summary directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating summary: %w", err)
	}
	if err := report.WriteMarkdown(f, rep, "Link Check Report"); err != nil {
		f.Close()
		return fmt.Errorf("writing summary: %w", err)
	}
	return f.Close()
}

func saveRun(ctx context.Context, path string, rep types.Report, log *zap.Logger) error {
	s, err := store.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.Save(ctx, rep)
	if err != nil {
		return err
	}
	log.Debug("stored run", zap.String("run_id", id), zap.String("path", path))
	return nil
}

// sendNotification never fails the run: missing credentials and transport
// errors are logged.
func sendNotification(ctx context.Context, out io.Writer, cfg types.NotifyConfig, creds notify.CredentialProvider, rep types.Report, log *zap.Logger) {
	n, err := notify.New(cfg, creds)
	if errors.Is(err, notify.ErrMissingCredentials) {
		fmt.Fprintf(out, "Notification skipped: %v\n", err)
		log.Warn("notification skipped", zap.Error(err))
		return
	}
	if err != nil {
		log.Error("notification setup failed", zap.Error(err))
		return
	}
	if err := n.Notify(ctx, rep); err != nil {
		fmt.Fprintf(out, "Failed to send notification: %v\n", err)
		log.Error("notification failed", zap.Error(err))
		return
	}
	fmt.Fprintf(out, "Email report sent to %s\n", cfg.Recipient)
}

func init() {
	checkCmd.Flags().Bool("notify", false, "send the report to the configured recipient when there are issues")
	checkCmd.Flags().Bool("email", false, "alias for --notify")
	checkCmd.Flags().Int("workers", 1, "number of links checked concurrently")
	checkCmd.Flags().Duration("deadline", 0, "overall deadline for the run (0 = none)")
	checkCmd.Flags().Int("retries", types.DefaultRetryBudget, "retries after the first probe on 5xx or timeout")
	checkCmd.Flags().Int("redirects", types.DefaultRedirectBudget, "maximum redirects followed per attempt")
	checkCmd.Flags().Duration("timeout", types.DefaultTimeout, "timeout for each probe")
	checkCmd.Flags().Duration("backoff", types.DefaultBackoffUnit, "backoff unit; retry n waits 2*n units")
	checkCmd.Flags().String("format", string(types.FormatJSON), "report format: json or yaml")
	checkCmd.Flags().String("summary", "", "also write a Markdown summary to this path")
	checkCmd.Flags().String("transport", string(types.TransportSMTP), "notification transport: smtp or mailgun")

	bindFlags(checkCmd, map[string]string{
		"notify":    "check.notify_enabled",
		"workers":   "check.workers",
		"deadline":  "check.deadline",
		"retries":   "check.retry_budget",
		"redirects": "check.redirect_budget",
		"timeout":   "check.timeout",
		"backoff":   "check.backoff_unit",
		"format":    "report.format",
		"summary":   "report.summary_path",
		"transport": "notify.transport",
	})

	rootCmd.AddCommand(checkCmd)
}
