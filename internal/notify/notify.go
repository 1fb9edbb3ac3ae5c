// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notify delivers an issue report to a fixed recipient over SMTP or
// the Mailgun HTTP API. Credentials are resolved through a
// CredentialProvider when the notifier is constructed.
package notify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/linkaudit/pkg/types"
)

// ErrMissingCredentials is returned when a required credential is not set.
var ErrMissingCredentials = errors.New("missing notification credentials")

// Defaults for the notification message.
const (
	DefaultSubject   = "Amazon Link Check Report"
	DefaultTitle     = "Amazon Link Check Report"
	DefaultRecipient = "links@example.com"
)

// Notifier sends a report. Implementations do nothing for an all-clear report.
type Notifier interface {
	Notify(ctx context.Context, r types.Report) error
}

// CredentialProvider resolves a credential by its environment-style key.
type CredentialProvider interface {
	Lookup(key string) (string, bool)
}

// Env reads credentials from the process environment.
type Env struct{}

// Lookup returns the non-empty value of the environment variable key.
func (Env) Lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// Chain tries each provider in order and returns the first hit.
type Chain []CredentialProvider

// Lookup implements CredentialProvider.
func (c Chain) Lookup(key string) (string, bool) {
	for _, p := range c {
		if p == nil {
			continue
		}
		if v, ok := p.Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}

// resolve looks up every key or reports all missing ones.
func resolve(creds CredentialProvider, keys ...string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	var missing []string
	for _, k := range keys {
		v, ok := creds.Lookup(k)
		if !ok {
			missing = append(missing, k)
			continue
		}
		values[k] = v
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return values, nil
}

// New builds the notifier selected by cfg.Transport.
func New(cfg types.NotifyConfig, creds CredentialProvider) (Notifier, error) {
	if creds == nil {
		creds = Env{}
	}
	switch cfg.Transport {
	case types.TransportSMTP, "":
		return NewSMTP(cfg, creds)
	case types.TransportMailgun:
		return NewMailgun(cfg, creds)
	}
	return nil, fmt.Errorf("unknown notify transport %q", cfg.Transport)
}

func recipient(cfg types.NotifyConfig) string {
	if cfg.Recipient != "" {
		return cfg.Recipient
	}
	return DefaultRecipient
}

func subject(cfg types.NotifyConfig) string {
	if cfg.Subject != "" {
		return cfg.Subject
	}
	return DefaultSubject
}
