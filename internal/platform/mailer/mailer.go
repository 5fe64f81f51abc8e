package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "biolink/internal/pkg/errors"
	"biolink/internal/platform/config"
)

// Sender delivers magic-link emails.
type Sender interface {
	SendMagicLink(ctx context.Context, to, url string, expiresAt time.Time) error
}

// New picks the sender configured by cfg.Provider.
func New(cfg config.EmailConfig) Sender {
	if cfg.Provider == "smtp" {
		return NewSMTPSender(cfg.SMTP)
	}
	return NewLogSender()
}

type SMTPSender struct {
	cfg  config.SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg, send: smtp.SendMail}
}

func (s *SMTPSender) SendMagicLink(ctx context.Context, to, url string, expiresAt time.Time) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var a smtp.Auth
	if s.cfg.Username != "" {
		a = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := s.send(addr, a, s.cfg.FromAddress, []string{to}, s.message(to, url, expiresAt)); err != nil {
		return fmt.Errorf("%w: smtp send to %s: %w", apperrors.ErrUpstream, to, err)
	}
	return nil
}

func (s *SMTPSender) message(to, url string, expiresAt time.Time) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.cfg.FromName, s.cfg.FromAddress)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	b.WriteString("Subject: Your sign-in link\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	fmt.Fprintf(&b, "Sign in to your page editor:\r\n\r\n%s\r\n\r\n", url)
	fmt.Fprintf(&b, "This link expires at %s and can only be used once.\r\n", expiresAt.UTC().Format(time.RFC1123))
	return []byte(b.String())
}

// LogSender writes the link to the log instead of sending mail. Development only.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) SendMagicLink(ctx context.Context, to, url string, expiresAt time.Time) error {
	log.Info().Str("to", to).Str("url", url).Time("expires_at", expiresAt).Msg("magic link")
	return nil
}
