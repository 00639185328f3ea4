// Package mailer delivers transactional email over SMTP.
package mailer

import (
	"context"
	"io"
	"strings"

	"natillera-miahorro/internal/core/domain"
	"natillera-miahorro/internal/pkg/logger"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Config holds the SMTP account used to send mail
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends domain.EmailMessage values through a gomail dialer
type Mailer struct {
	cfg    Config
	dialer sender
}

// New creates an SMTP mailer
func New(cfg Config) *Mailer {
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	return &Mailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

// Send delivers msg. An empty recipient is skipped without error.
func (m *Mailer) Send(ctx context.Context, msg domain.EmailMessage) error {
	to := strings.TrimSpace(msg.To)
	if to == "" {
		logger.Log.Debug("Email skipped: no recipient", zap.String("subject", msg.Subject))
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	message := gomail.NewMessage()
	if m.cfg.FromName != "" {
		message.SetAddressHeader("From", m.cfg.From, m.cfg.FromName)
	} else {
		message.SetHeader("From", m.cfg.From)
	}
	message.SetHeader("To", to)
	message.SetHeader("Subject", msg.Subject)
	message.SetBody("text/html", msg.HTML)

	for _, a := range msg.Attachments {
		content := a.Content
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		message.Attach(a.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {contentType}}),
		)
	}

	if err := m.dialer.DialAndSend(message); err != nil {
		return err
	}

	logger.Log.Info("Email sent",
		zap.String("to", logger.MaskEmail(to)),
		zap.String("subject", msg.Subject),
		zap.Int("attachments", len(msg.Attachments)))
	return nil
}

// Disabled is used when SMTP is not configured; every message is dropped
type Disabled struct{}

// Send logs and drops msg
func (Disabled) Send(_ context.Context, msg domain.EmailMessage) error {
	logger.Log.Debug("Email disabled, message dropped",
		zap.String("to", logger.MaskEmail(msg.To)),
		zap.String("subject", msg.Subject))
	return nil
}
