// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/linkaudit/internal/httputil"
	"github.com/pdiddy/linkaudit/internal/report"
	"github.com/pdiddy/linkaudit/pkg/types"
)

// Credential keys used by the Mailgun notifier.
const (
	KeyMailgunAPIKey = "MAILGUN_API_KEY"
	KeyMailgunDomain = "MAILGUN_DOMAIN"
)

// DefaultMailgunBaseURL is the Mailgun v3 API root.
const DefaultMailgunBaseURL = "https://api.mailgun.net/v3"

// Mailgun sends the HTML report through the Mailgun messages API.
type Mailgun struct {
	BaseURL string
	APIKey  string
	Domain  string
	To      string
	Subject string
	Client  *http.Client
}

// NewMailgun resolves MAILGUN_API_KEY and MAILGUN_DOMAIN and returns the notifier.
func NewMailgun(cfg types.NotifyConfig, creds CredentialProvider) (*Mailgun, error) {
	values, err := resolve(creds, KeyMailgunAPIKey, KeyMailgunDomain)
	if err != nil {
		return nil, err
	}
	base := cfg.MailgunBaseURL
	if base == "" {
		base = DefaultMailgunBaseURL
	}
	return &Mailgun{
		BaseURL: strings.TrimRight(base, "/"),
		APIKey:  values[KeyMailgunAPIKey],
		Domain:  values[KeyMailgunDomain],
		To:      recipient(cfg),
		Subject: subject(cfg),
		Client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Notify posts r unless it is all clear. Throttled and 5xx responses are
// retried with backoff.
func (m *Mailgun) Notify(ctx context.Context, r types.Report) error {
	if r.AllClear {
		return nil
	}

	var html bytes.Buffer
	if err := report.WriteHTML(&html, r, DefaultTitle); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	form := url.Values{
		"from":    {fmt.Sprintf("Link Checker <linkcheck@%s>", m.Domain)},
		"to":      {m.To},
		"subject": {m.Subject},
		"html":    {html.String()},
	}
	endpoint := fmt.Sprintf("%s/%s/messages", m.BaseURL, url.PathEscape(m.Domain))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating mailgun request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("api", m.APIKey)

	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return fmt.Errorf("sending mailgun message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mailgun returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}
