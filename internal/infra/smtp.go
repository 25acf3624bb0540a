package infra

import (
	"bytes"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer sends low-stock alert mails over SMTP.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
	to       []string
}

// NewMailer returns nil when SMTP_HOST or ALERT_EMAIL_TO is not configured.
func NewMailer(cfg *config.Config) *Mailer {
	if cfg.SMTPHost == "" || cfg.AlertEmailTo == "" {
		return nil
	}
	var to []string
	for _, addr := range strings.Split(cfg.AlertEmailTo, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		to:       to,
	}
}

// EnviarAlertaStock mails the alert recipients. An optional attachment (the
// XLSX stock report) is sent when data is non-empty.
func (m *Mailer) EnviarAlertaStock(subject, body string, adjunto []byte) error {
	e := email.NewEmail()
	e.From = m.user
	e.To = m.to
	e.Subject = subject
	e.Text = []byte(body)

	if len(adjunto) > 0 {
		if _, err := e.Attach(bytes.NewReader(adjunto), "reporte_stock.xlsx",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"); err != nil {
			return fmt.Errorf("mailer: adjuntar reporte: %w", err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	if err := e.Send(m.addr, auth); err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}
	return nil
}
