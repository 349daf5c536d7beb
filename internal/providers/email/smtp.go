package email

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"net/smtp"
)

//go:embed templates/ticket.html
var ticketTemplateHTML string

var ticketTemplate = template.Must(template.New("ticket").Parse(ticketTemplateHTML))

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPProvider struct {
	cfg Config
}

func NewSMTP(cfg Config) *SMTPProvider {
	return &SMTPProvider{cfg: cfg}
}

func (p *SMTPProvider) SendTicket(ctx context.Context, msg TicketEmail) error {
	var body bytes.Buffer
	if err := ticketTemplate.Execute(&body, msg); err != nil {
		return fmt.Errorf("render ticket email: %w", err)
	}

	subject := fmt.Sprintf("Your ticket for %s", msg.EventTitle)
	return p.send(msg.To, subject, body.String())
}

func (p *SMTPProvider) send(to, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", p.cfg.Username, p.cfg.Password, p.cfg.Host)
	addr := fmt.Sprintf("%s:%d", p.cfg.Host, p.cfg.Port)

	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n%s\r\n%s", to, subject, mime, htmlBody))

	return smtp.SendMail(addr, auth, p.cfg.From, []string{to}, msg)
}
