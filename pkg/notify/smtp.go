package notify

import (
	"context"

	"gopkg.in/gomail.v2"

	"github.com/ppmlab/atlas/pkg/logutils"
)

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(host string, port int, user, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (s *SMTPSender) SendMessageTo(_ context.Context, to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		logutils.Log.Errorf("Failed to send email to %s: %v", to, err)
		return err
	}
	logutils.Log.Infof("Sent email to %s", to)
	return nil
}

// logSender only logs, for deployments without SMTP.
type logSender struct{}

func (logSender) SendMessageTo(_ context.Context, to, subject, _ string) error {
	logutils.Log.Debugf("smtp disabled, drop %q to %s", subject, to)
	return nil
}
