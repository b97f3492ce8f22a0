package main

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"
)

// mailAttachment is an in-memory file attached to an outgoing report.
type mailAttachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// reportMailer delivers export reports by e-mail.
type reportMailer interface {
	SendReport(ctx context.Context, to, subject, body string, attachments ...mailAttachment) error
}

// smtpMailer sends through an SMTP relay with gomail.
type smtpMailer struct {
	from   string
	dialer *gomail.Dialer
}

func newSMTPMailer(cfg appConfig) *smtpMailer {
	return &smtpMailer{
		from:   cfg.SMTPFrom,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
	}
}

// buildReportMessage assembles a plain-text message with optional attachments.
func buildReportMessage(from, to, subject, body string, attachments ...mailAttachment) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	for _, a := range attachments {
		data := a.Data
		m.Attach(a.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}),
		)
	}
	return m
}

// SendReport dials the relay and sends one message. gomail has no context
// support, so ctx is only checked before dialing.
func (s *smtpMailer) SendReport(ctx context.Context, to, subject, body string, attachments ...mailAttachment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := buildReportMessage(s.from, to, subject, body, attachments...)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send report to %s: %w", to, err)
	}
	return nil
}
