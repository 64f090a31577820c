// Package mail delivers notification digests over SMTPS.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/promowatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Notifier = (*Mailer)(nil)

// dialTimeout bounds the TLS connection setup; the message exchange
// itself is small.
const dialTimeout = 30 * time.Second

// Mailer implements the Notifier port over SMTP with implicit TLS
// (SMTPS, typically port 465).
type Mailer struct {
	host     string
	port     int
	username string
	password string
	to       string
}

// New creates a Mailer. The authenticated user is also the envelope
// sender.
func New(host string, port int, username, password, to string) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		to:       to,
	}
}

// Send delivers a multipart/alternative message with the given plain and
// HTML bodies. A nil return means the server accepted the message.
func (m *Mailer) Send(ctx context.Context, subject, textBody, htmlBody string) error {
	msg, err := m.buildMessage(subject, textBody, htmlBody)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: dialTimeout},
		Config:    &tls.Config{ServerName: m.host},
	}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := client.Mail(m.username); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	if err := client.Rcpt(m.to); err != nil {
		return fmt.Errorf("smtp RCPT TO: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish message: %w", err)
	}

	return client.Quit()
}

// buildMessage assembles a multipart/alternative MIME message. The plain
// part comes first so clients that ignore HTML still render the digest.
func (m *Mailer) buildMessage(subject, textBody, htmlBody string) ([]byte, error) {
	var buf strings.Builder
	mw := multipart.NewWriter(&buf)

	headers := []string{
		fmt.Sprintf("From: Promowatch <%s>", m.username),
		fmt.Sprintf("To: %s", m.to),
		fmt.Sprintf("Subject: %s", mime.QEncoding.Encode("utf-8", subject)),
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q", mw.Boundary()),
		"",
		"",
	}

	plain, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := plain.Write([]byte(textBody)); err != nil {
		return nil, err
	}

	html, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := html.Write([]byte(htmlBody)); err != nil {
		return nil, err
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}

	return []byte(strings.Join(headers, "\r\n") + buf.String()), nil
}
