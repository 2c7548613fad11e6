package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"daily-digest/internal/model"
)

// Config holds SMTP submission settings. The server is reached over implicit
// TLS (SMTPS, usually port 465).
type Config struct {
	Host      string
	Port      int
	Sender    string
	Password  string
	Recipient string
	Timeout   time.Duration
}

// SMTPSender delivers digests to a single recipient.
type SMTPSender struct {
	cfg  Config
	dial func(ctx context.Context, network, addr string) (net.Conn, error)
	now  func() time.Time
}

// NewSMTP creates a sender that authenticates with PLAIN as cfg.Sender.
func NewSMTP(cfg Config) *SMTPSender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	d := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: cfg.Timeout},
		Config:    &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12},
	}
	return &SMTPSender{cfg: cfg, dial: d.DialContext, now: time.Now}
}

// Send opens one session, authenticates, submits the message and quits.
func (s *SMTPSender) Send(ctx context.Context, d model.Digest) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	conn, err := s.dial(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp: dial %s: %w", addr, err)
	}
	deadline := s.now().Add(s.cfg.Timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = conn.SetDeadline(deadline)

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp: greeting: %w", err)
	}
	defer c.Close()

	if err := c.Auth(smtp.PlainAuth("", s.cfg.Sender, s.cfg.Password, s.cfg.Host)); err != nil {
		return fmt.Errorf("smtp: auth: %w", err)
	}
	if err := c.Mail(s.cfg.Sender); err != nil {
		return fmt.Errorf("smtp: mail from: %w", err)
	}
	if err := c.Rcpt(s.cfg.Recipient); err != nil {
		return fmt.Errorf("smtp: rcpt to: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp: data: %w", err)
	}
	if _, err := w.Write(Message(s.cfg.Sender, s.cfg.Recipient, d, s.now())); err != nil {
		return fmt.Errorf("smtp: write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp: end data: %w", err)
	}
	if err := c.Quit(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("smtp: quit: %w", err)
	}
	return nil
}

// Message renders a plain-text RFC 5322 message with CRLF line endings.
func Message(from, to string, d model.Digest, date time.Time) []byte {
	headers := [][2]string{
		{"From", from},
		{"To", to},
		{"Subject", mime.QEncoding.Encode("utf-8", d.Subject)},
		{"Date", date.Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", `text/plain; charset="utf-8"`},
		{"Content-Transfer-Encoding", "8bit"},
	}
	var b strings.Builder
	for _, h := range headers {
		fmt.Fprintf(&b, "%s: %s\r\n", h[0], h[1])
	}
	b.WriteString("\r\n")
	body := strings.ReplaceAll(d.Body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}
