// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/linkaudit/internal/report"
	"github.com/pdiddy/linkaudit/internal/store"
	"github.com/pdiddy/linkaudit/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the most recent audit results",
	Long: `Report prints the latest run. It reads the SQLite store when --store is
set and the report file otherwise.`,
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rep, err := latestReport(cmd, cfg.Report)
	if err != nil {
		return err
	}

	markdownOutput, _ := cmd.Flags().GetBool("markdown")
	return formatReportOutput(cmd.OutOrStdout(), rep, markdownOutput)
}

func latestReport(cmd *cobra.Command, cfg types.ReportConfig) (types.Report, error) {
	if cfg.StorePath == "" {
		return report.Read(cfg.Path, cfg.Format)
	}
	s, err := store.Open(cfg.StorePath)
	if err != nil {
		return types.Report{}, err
	}
	defer s.Close()

	run, err := s.Latest(cmd.Context())
	if err != nil {
		return types.Report{}, err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Run %s\n", run.ID)
	return run.Report, nil
}

func formatReportOutput(w io.Writer, rep types.Report, markdownOutput bool) error {
	if markdownOutput {
		return report.WriteMarkdown(w, rep, "Link Check Report")
	}
	fmt.Fprintf(w, "Generated %s\n", rep.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	report.WriteSummary(w, rep)
	return nil
}

func init() {
	reportCmd.Flags().Bool("markdown", false, "output as Markdown")
	rootCmd.AddCommand(reportCmd)
}
