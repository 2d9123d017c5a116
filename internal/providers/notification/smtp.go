package notification

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/bwmarrin/snowflake"
	"github.com/paperforge/paperforge/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

var subjects = map[Kind]string{
	KindExpirationWarning: "Your Paperforge subscription is expiring soon",
}

// SMTPSender renders the template for a kind and delivers it by SMTP.
type SMTPSender struct {
	cfg       config.SMTPConfig
	directory Directory
	templates *template.Template
}

func NewSMTP(cfg config.SMTPConfig, directory Directory) (*SMTPSender, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse notification templates: %w", err)
	}
	return &SMTPSender{cfg: cfg, directory: directory, templates: tmpl}, nil
}

func (s *SMTPSender) Send(ctx context.Context, userID snowflake.ID, kind Kind, data map[string]any) error {
	to, err := s.directory.LookupEmail(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, string(kind)+".html", data); err != nil {
		return fmt.Errorf("render %s: %w", kind, err)
	}

	subject, ok := subjects[kind]
	if !ok {
		subject = "Notification from Paperforge"
	}

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n%s\r\n%s", to, subject, mime, body.String()))

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, msg)
}
