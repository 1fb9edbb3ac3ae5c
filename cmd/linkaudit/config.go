// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/linkaudit/internal/extract"
	"github.com/pdiddy/linkaudit/internal/notify"
	"github.com/pdiddy/linkaudit/internal/report"
	"github.com/pdiddy/linkaudit/pkg/types"
)

// defaults lists every configuration key so that environment variables
// are honoured for all of them.
var defaults = map[string]any{
	"check.retry_budget":    types.DefaultRetryBudget,
	"check.redirect_budget": types.DefaultRedirectBudget,
	"check.timeout":         types.DefaultTimeout,
	"check.user_agent":      types.DefaultUserAgent,
	"check.backoff_unit":    types.DefaultBackoffUnit,
	"check.workers":         1,
	"check.deadline":        0,
	"check.verbose":         false,
	"check.notify_enabled":  false,

	"corpus.root":                ".",
	"corpus.products_dir":        "_products",
	"corpus.posts_dir":           "_posts",
	"corpus.outbound_pattern":    extract.DefaultOutboundPattern,
	"corpus.product_path_prefix": extract.DefaultProductPathPrefix,

	"report.path":         report.DefaultPath,
	"report.format":       string(types.FormatJSON),
	"report.summary_path": "",
	"report.store_path":   "",

	"notify.transport":        string(types.TransportSMTP),
	"notify.recipient":        notify.DefaultRecipient,
	"notify.subject":          notify.DefaultSubject,
	"notify.smtp_host":        notify.DefaultSMTPHost,
	"notify.smtp_port":        notify.DefaultSMTPPort,
	"notify.mailgun_base_url": notify.DefaultMailgunBaseURL,
}

func init() {
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

// bindFlags binds command flags to configuration keys so that a flag set
// on the command line wins over environment, file, and defaults.
func bindFlags(cmd *cobra.Command, keys map[string]string) {
	bindFlagSet(cmd.Flags(), keys)
}

func bindPersistentFlags(cmd *cobra.Command, keys map[string]string) {
	bindFlagSet(cmd.PersistentFlags(), keys)
}

func bindFlagSet(flags *pflag.FlagSet, keys map[string]string) {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", flag, err))
		}
	}
}

// loadConfig decodes the merged configuration.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	cfg.Check = cfg.Check.WithDefaults()
	switch cfg.Report.Format {
	case types.FormatJSON, types.FormatYAML:
	default:
		return types.Config{}, fmt.Errorf("unsupported report format %q: use json or yaml", cfg.Report.Format)
	}
	return cfg, nil
}
