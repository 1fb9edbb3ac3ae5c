// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/linkaudit/internal/corpus"
	"github.com/pdiddy/linkaudit/internal/extract"
	"github.com/pdiddy/linkaudit/pkg/types"
)

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "List the unique outbound links without checking them",
	Long: `Links runs extraction only and prints the candidate set in discovery
order: product documents first, then posts. References from posts to
product pages that do not resolve to a link are listed as dangling.`,
	RunE: runLinks,
}

func runLinks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dir, err := corpus.NewDir(cfg.Corpus)
	if err != nil {
		return err
	}
	opts, err := extract.OptionsFromConfig(cfg.Corpus, logger)
	if err != nil {
		return err
	}
	res, err := extract.Extract(dir, opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatLinksOutput(cmd.OutOrStdout(), res, jsonOutput)
}

func formatLinksOutput(w io.Writer, res extract.Result, jsonOutput bool) error {
	links := res.Candidates.Links()
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if links == nil {
			links = []types.Link{}
		}
		return enc.Encode(links)
	}

	if len(links) == 0 {
		fmt.Fprintln(w, "No outbound links found.")
	}
	for _, l := range links {
		if l.ReferencedProduct != "" {
			fmt.Fprintf(w, "%s  %s  (via %s)\n", l.URL, l.Source, l.ReferencedProduct)
			continue
		}
		fmt.Fprintf(w, "%s  %s\n", l.URL, l.Source)
	}
	for _, d := range res.Dangling {
		fmt.Fprintf(w, "dangling: %s -> %s: %s\n", d.Source, d.Product, d.Reason)
	}
	fmt.Fprintf(w, "\n%d links (%d duplicates dropped, %d dangling references)\n",
		len(links), res.Duplicates(), len(res.Dangling))
	return nil
}

func init() {
	linksCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(linksCmd)
}
