// internal/services/notification_service.go
package services

import (
	"errors"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/pollopollo-backend/internal/config"
)

// Notifier delivers a single plain text email. A nil error means the message
// was handed to the mail server.
type Notifier interface {
	SendEmail(to, subject, body string) error
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// NotificationService is the SMTP backed Notifier.
type NotificationService struct {
	config   *config.Config
	sendMail sendMailFunc
}

func NewNotificationService(config *config.Config) *NotificationService {
	return &NotificationService{
		config:   config,
		sendMail: smtp.SendMail,
	}
}

func (s *NotificationService) SendEmail(to, subject, body string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return errors.New("recipient address is empty")
	}
	recipient, err := mail.ParseAddress(to)
	if err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	to = recipient.Address

	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("Email would be sent")
		return nil
	}

	var auth smtp.Auth
	if s.config.Email.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)
	}

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	if err := s.sendMail(addr, auth, s.config.Email.FromEmail, []string{to}, s.compose(to, subject, body)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *NotificationService) compose(to, subject, body string) []byte {
	from := (&mail.Address{Name: s.config.Email.FromName, Address: s.config.Email.FromEmail}).String()

	// Header values are encoded words, so user text cannot start a new header
	var msg strings.Builder
	msg.WriteString("From: " + from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(msg.String())
}
