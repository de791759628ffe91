package services

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"
	"time"

	"github.com/comitanigiacomo/habit-grid/internal/core/domain"
)

// Notifier delivers the daily failure summary produced by the sweep.
type Notifier interface {
	NotifyFailures(ctx context.Context, date time.Time, failed []*domain.Habit) error
}

// LogNotifier is the default sink when email delivery is disabled.
type LogNotifier struct{}

func (n *LogNotifier) NotifyFailures(ctx context.Context, date time.Time, failed []*domain.Habit) error {
	names := make([]string, 0, len(failed))
	for _, h := range failed {
		names = append(names, h.Name)
	}
	log.Printf("Failure summary for %s: %d habit(s) missed: %s",
		date.Format(domain.DateLayout), len(failed), strings.Join(names, ", "))
	return nil
}

type SMTPConfig struct {
	Host      string
	Port      string
	Username  string
	Password  string
	From      string
	Recipient string
}

type SMTPNotifier struct {
	cfg SMTPConfig
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

func (n *SMTPNotifier) NotifyFailures(ctx context.Context, date time.Time, failed []*domain.Habit) error {
	if len(failed) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Habit failure alert - %s", date.Format(domain.DateLayout))

	var body strings.Builder
	fmt.Fprintf(&body, "Failed habits on %s (%d):\r\n\r\n", date.Format("Monday, January 2, 2006"), len(failed))
	for _, h := range failed {
		fmt.Fprintf(&body, "  - %s\r\n", h.Name)
	}
	body.WriteString("\r\nStreak broken. Back on track tomorrow.\r\n")

	msg := "To: " + n.cfg.Recipient + "\r\n" +
		"From: " + n.cfg.From + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body.String()

	addr := n.cfg.Host + ":" + n.cfg.Port

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{n.cfg.Recipient}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp notifier: sending via %s: %w", addr, err)
	}

	log.Printf("Failure notification sent to %s for %d habit(s)", n.cfg.Recipient, len(failed))
	return nil
}
