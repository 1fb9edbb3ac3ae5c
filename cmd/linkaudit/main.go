// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the linkaudit CLI, which finds the
// outbound marketplace links in a content site and verifies that each one
// is still live.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/linkaudit/internal/logging"
	"github.com/pdiddy/linkaudit/internal/notify"
	"github.com/pdiddy/linkaudit/internal/report"
	"github.com/pdiddy/linkaudit/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// logger is built in PersistentPreRunE once flags are parsed.
	logger = zap.NewNop()

	// credentials resolves notification credentials: environment first
	// (including .env), then the .secrets/ directory.
	credentials notify.CredentialProvider = notify.Env{}
)

// errIssuesFound makes the process exit 1 without printing an error.
var errIssuesFound = errors.New("link issues found")

// rootCmd is the base command for the linkaudit CLI.
var rootCmd = &cobra.Command{
	Use:   "linkaudit",
	Short: "Audit outbound marketplace links in a content site",
	Long: `linkaudit scans the product and post documents of a static content site,
collects every outbound marketplace link (declared in product front matter,
written inline in posts, or reached through a post's reference to a product
page), and verifies each one with a HEAD request.

Transient failures are retried with backoff, redirects are followed, and the
links that are not live are written to a structured report. The check
command exits 1 when any link has an issue.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.New(os.Stderr, viper.GetBool("check.verbose"))

		if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("loading .env: %w", err)
		}

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, logger)
		if err != nil {
			return err
		}
		credentials = notify.Chain{notify.Env{}, s}
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug("using config file", zap.String("path", f))
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./linkaudit.yaml or $XDG_CONFIG_HOME/linkaudit/linkaudit.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", secrets.DefaultDir, "directory of credential files")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "show detailed progress and debug logs")
	rootCmd.PersistentFlags().String("root", ".", "site root containing the product and post directories")
	rootCmd.PersistentFlags().String("report", report.DefaultPath, "report file path")
	rootCmd.PersistentFlags().String("store", "", "SQLite file that keeps the latest run (empty = disabled)")

	bindPersistentFlags(rootCmd, map[string]string{
		"verbose": "check.verbose",
		"root":    "corpus.root",
		"report":  "report.path",
		"store":   "report.store_path",
	})
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("linkaudit")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join(xdg.ConfigHome, "linkaudit"))
	}

	viper.SetEnvPrefix("LINKAUDIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "warning: reading config: %v\n", err)
		}
	}
}

func main() {
	err := rootCmd.Execute()
	logger.Sync()
	if err == nil {
		return
	}
	if !errors.Is(err, errIssuesFound) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(1)
}
