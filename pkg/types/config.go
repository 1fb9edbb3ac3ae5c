package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout bounds each individual probe (default 10s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with probes. Defaults to a
	// desktop browser identification.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// CheckConfig holds settings for the liveness checker and orchestrator.
type CheckConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// RetryBudget is the number of retries after the first probe on a
	// transient failure (default 5).
	RetryBudget int `json:"retry_budget" yaml:"retry_budget" mapstructure:"retry_budget"`

	// RedirectBudget is the maximum number of redirect hops followed per
	// attempt (default 5).
	RedirectBudget int `json:"redirect_budget" yaml:"redirect_budget" mapstructure:"redirect_budget"`

	// BackoffUnit is multiplied by 2×attempt to get the wait before a retry
	// (default 1s).
	BackoffUnit time.Duration `json:"backoff_unit" yaml:"backoff_unit" mapstructure:"backoff_unit"`

	// Workers is the number of links checked concurrently (default 1).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// Deadline bounds the whole run. Zero means no deadline.
	Deadline time.Duration `json:"deadline" yaml:"deadline" mapstructure:"deadline"`

	// Verbose prints one line per step instead of one glyph per attempt.
	Verbose bool `json:"verbose" yaml:"verbose" mapstructure:"verbose"`

	// NotifyEnabled dispatches the report to the configured notifier.
	NotifyEnabled bool `json:"notify_enabled" yaml:"notify_enabled" mapstructure:"notify_enabled"`
}

// Default check settings.
const (
	DefaultRetryBudget    = 5
	DefaultRedirectBudget = 5
	DefaultTimeout        = 10 * time.Second
	DefaultBackoffUnit    = time.Second
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// WithDefaults returns a copy of c with unset fields replaced by defaults.
// RetryBudget is the exception: zero
// is a valid budget meaning a single probe, so it is kept, and a negative
// value is clamped to zero. Callers wanting DefaultRetryBudget set it
// explicitly, as the CLI does through its config defaults.
func (c CheckConfig) WithDefaults() CheckConfig {
	if c.RetryBudget < 0 {
		c.RetryBudget = 0
	}
	if c.RedirectBudget <= 0 {
		c.RedirectBudget = DefaultRedirectBudget
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.BackoffUnit <= 0 {
		c.BackoffUnit = DefaultBackoffUnit
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}

// CorpusConfig locates the content documents.
type CorpusConfig struct {
	// Root is the site root containing the document directories (default ".").
	Root string `json:"root" yaml:"root" mapstructure:"root"`

	// ProductsDir is relative to Root (default "_products").
	ProductsDir string `json:"products_dir" yaml:"products_dir" mapstructure:"products_dir"`

	// PostsDir is relative to Root (default "_posts").
	PostsDir string `json:"posts_dir" yaml:"posts_dir" mapstructure:"posts_dir"`

	// OutboundPattern is the regular expression an outbound link must match
	// (default `^https://www\.amazon\.com/`).
	OutboundPattern string `json:"outbound_pattern" yaml:"outbound_pattern" mapstructure:"outbound_pattern"`

	// ProductPathPrefix is the internal path that refers to a product
	// document (default "/products/").
	ProductPathPrefix string `json:"product_path_prefix" yaml:"product_path_prefix" mapstructure:"product_path_prefix"`
}

// ReportFormat selects the serialization of the report file.
type ReportFormat string

const (
	FormatJSON ReportFormat = "json"
	FormatYAML ReportFormat = "yaml"
)

// ReportConfig holds settings for the report outputs.
type ReportConfig struct {
	// Path is the report file (default "link_check_report.json").
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// Format is json or yaml (default json).
	Format ReportFormat `json:"format" yaml:"format" mapstructure:"format"`

	// SummaryPath, when set, receives a Markdown summary.
	SummaryPath string `json:"summary_path,omitempty" yaml:"summary_path,omitempty" mapstructure:"summary_path"`

	// StorePath, when set, is the SQLite file that keeps the latest run.
	StorePath string `json:"store_path,omitempty" yaml:"store_path,omitempty" mapstructure:"store_path"`
}

// NotifyTransport identifies the notification backend.
type NotifyTransport string

const (
	TransportSMTP    NotifyTransport = "smtp"
	TransportMailgun NotifyTransport = "mailgun"
)

// NotifyConfig holds settings for the notification collaborator.
// Credentials are never stored here; they come from a CredentialProvider.
type NotifyConfig struct {
	// Transport is smtp or mailgun (default smtp).
	Transport NotifyTransport `json:"transport" yaml:"transport" mapstructure:"transport"`

	// Recipient is the fixed address that receives reports.
	Recipient string `json:"recipient" yaml:"recipient" mapstructure:"recipient"`

	// Subject is the message subject line.
	Subject string `json:"subject" yaml:"subject" mapstructure:"subject"`

	// SMTPHost and SMTPPort address the submission server
	// (default smtp.gmail.com:587).
	SMTPHost string `json:"smtp_host" yaml:"smtp_host" mapstructure:"smtp_host"`
	SMTPPort int    `json:"smtp_port" yaml:"smtp_port" mapstructure:"smtp_port"`

	// MailgunBaseURL is the Mailgun API root (default https://api.mailgun.net/v3).
	MailgunBaseURL string `json:"mailgun_base_url" yaml:"mailgun_base_url" mapstructure:"mailgun_base_url"`
}

// Config groups all settings for one audit run.
type Config struct {
	Check  CheckConfig  `json:"check" yaml:"check" mapstructure:"check"`
	Corpus CorpusConfig `json:"corpus" yaml:"corpus" mapstructure:"corpus"`
	Report ReportConfig `json:"report" yaml:"report" mapstructure:"report"`
	Notify NotifyConfig `json:"notify" yaml:"notify" mapstructure:"notify"`
}
