package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
)

//go:embed templates/*.html
var templateFiles embed.FS

var templates = template.Must(template.ParseFS(templateFiles, "templates/*.html"))

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Mailer struct {
	FromName string
	From     string
	Password string
	Host     string
	Port     string
	auth     smtp.Auth
	send     sendFunc
}

func NewMail(from, fromName, password, host, port string) *Mailer {
	auth := smtp.PlainAuth("", from, password, host)
	return &Mailer{
		FromName: fromName,
		From:     from,
		Password: password,
		Host:     host,
		Port:     port,
		auth:     auth,
		send:     smtp.SendMail,
	}
}

// Configured reports whether a sender address is set.
func (m *Mailer) Configured() bool {
	return m != nil && m.From != ""
}

// Render executes the named embedded template.
func Render(templateName string, data any) ([]byte, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return body.Bytes(), nil
}

func (m *Mailer) SendHTML(ctx context.Context, to []string, subject, templateName string, data any) error {
	if len(to) == 0 {
		return nil
	}

	html, err := Render(templateName, data)
	if err != nil {
		return err
	}

	var msg bytes.Buffer
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", m.FromName, m.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n\r\n", subject)
	msg.Write(html)

	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%s", m.Host, m.Port)
	if err := m.send(addr, m.auth, m.From, to, msg.Bytes()); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}
