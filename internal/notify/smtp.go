// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notify

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"

	"github.com/pdiddy/linkaudit/internal/report"
	"github.com/pdiddy/linkaudit/pkg/types"
)

// Credential keys used by the SMTP notifier.
const (
	KeyEmailUsername = "EMAIL_USERNAME"
	KeyEmailPassword = "EMAIL_PASSWORD"
)

// Default SMTP submission server.
const (
	DefaultSMTPHost = "smtp.gmail.com"
	DefaultSMTPPort = 587
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTP sends the HTML report through an authenticated submission server.
// The sender address is the account username.
type SMTP struct {
	Addr     string
	Username string
	To       string
	Subject  string

	auth smtp.Auth
	send sendFunc
}

// NewSMTP resolves EMAIL_USERNAME and EMAIL_PASSWORD and returns the notifier.
func NewSMTP(cfg types.NotifyConfig, creds CredentialProvider) (*SMTP, error) {
	values, err := resolve(creds, KeyEmailUsername, KeyEmailPassword)
	if err != nil {
		return nil, err
	}
	host := cfg.SMTPHost
	if host == "" {
		host = DefaultSMTPHost
	}
	port := cfg.SMTPPort
	if port <= 0 {
		port = DefaultSMTPPort
	}
	return &SMTP{
		Addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		Username: values[KeyEmailUsername],
		To:       recipient(cfg),
		Subject:  subject(cfg),
		auth:     smtp.PlainAuth("", values[KeyEmailUsername], values[KeyEmailPassword], host),
		send:     smtp.SendMail,
	}, nil
}

// Notify sends r unless it is all clear. smtp.SendMail upgrades the
// connection with STARTTLS when the server offers it.
func (s *SMTP) Notify(ctx context.Context, r types.Report) error {
	if r.AllClear {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := s.message(r)
	if err != nil {
		return err
	}
	if err := s.send(s.Addr, s.auth, s.Username, []string{s.To}, msg); err != nil {
		return fmt.Errorf("sending mail via %s: %w", s.Addr, err)
	}
	return nil
}

func (s *SMTP) message(r types.Report) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", s.Username)
	fmt.Fprintf(&buf, "To: %s\r\n", s.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", s.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	if err := report.WriteHTML(&buf, r, DefaultTitle); err != nil {
		return nil, fmt.Errorf("rendering report: %w", err)
	}
	return buf.Bytes(), nil
}
