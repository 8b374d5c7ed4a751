package mailer

import (
	"bytes"
	"fmt"
	"net/http"
	"text/template"
	"time"

	gomail "gopkg.in/mail.v2"
)

type SMTPMailer struct {
	fromEmail string
	dialer    *gomail.Dialer
}

func NewSMTP(host string, port int, username, password, fromEmail string) *SMTPMailer {
	dialer := gomail.NewDialer(host, port, username, password)
	dialer.Timeout = 10 * time.Second

	return &SMTPMailer{
		fromEmail: fromEmail,
		dialer:    dialer,
	}
}

// Send renders the named template (subject + body blocks) and delivers it,
// retrying transient failures. Returns the retry count on which delivery
// succeeded so callers can log it.
func (m *SMTPMailer) Send(templateFile, username, email string, data any) (int, error) {
	tmpl, err := template.ParseFS(FS, "templates/"+templateFile)
	if err != nil {
		return -1, fmt.Errorf("parse mail template %s: %w", templateFile, err)
	}

	subject := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(subject, "subject", data); err != nil {
		return -1, fmt.Errorf("render subject: %w", err)
	}

	body := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(body, "body", data); err != nil {
		return -1, fmt.Errorf("render body: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.fromEmail, FromName)
	msg.SetAddressHeader("To", email, username)
	msg.SetHeader("Subject", subject.String())
	msg.SetBody("text/html", body.String())

	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		if lastErr = m.dialer.DialAndSend(msg); lastErr == nil {
			return http.StatusOK, nil
		}
		time.Sleep(time.Duration(i) * time.Second)
	}

	return -1, fmt.Errorf("send mail to %s after %d attempts: %w", email, maxRetries, lastErr)
}
