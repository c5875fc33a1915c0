// Package email provides email sending capabilities via SMTP.
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"time"

	"signdesk/internal/config"
)

// Service provides email sending.
type Service struct {
	config config.SMTPConfig
	server string
	auth   smtp.Auth
}

// NewService creates a new email service.
func NewService(cfg config.SMTPConfig) *Service {
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)

	return &Service{
		config: cfg,
		server: cfg.Host + ":" + cfg.Port,
		auth:   auth,
	}
}

// IsConfigured returns true if email is configured.
func (s *Service) IsConfigured() bool {
	return s.config.Host != "" && s.config.Port != "" && s.config.From != ""
}

// SendHTMLEmail sends an HTML email with a plain text fallback part.
func (s *Service) SendHTMLEmail(to []string, subject, htmlBody string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email not configured")
	}

	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	boundary := "boundary-signdesk"

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary)
	fmt.Fprintf(&msg, "\r\n")

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/plain; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "Please view this email in an HTML-capable email client.\r\n")
	fmt.Fprintf(&msg, "\r\n")

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/html; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "%s\r\n", htmlBody)
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "--%s--\r\n", boundary)

	return smtp.SendMail(s.server, s.auth, s.config.From, to, msg.Bytes())
}

// InvitationData holds data for the invitation email template.
type InvitationData struct {
	AppName       string
	RecipientName string
	SenderName    string
	DocumentTitle string
	SignURL       string
	ExpiresAt     string
}

// CompletedData holds data for the completion notice template.
type CompletedData struct {
	AppName       string
	RecipientName string
	DocumentTitle string
}

// SendInvitationEmail sends a request-to-sign email with the signed link.
func (s *Service) SendInvitationEmail(to, recipientName, senderName, documentTitle, signURL string, expiresAt time.Time) error {
	data := InvitationData{
		AppName:       "Signdesk",
		RecipientName: recipientName,
		SenderName:    senderName,
		DocumentTitle: documentTitle,
		SignURL:       signURL,
		ExpiresAt:     expiresAt.UTC().Format("January 2, 2006"),
	}

	subject := fmt.Sprintf("%s has asked you to sign %q", senderName, documentTitle)
	html, err := renderTemplate(invitationEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("render invitation template: %w", err)
	}

	return s.SendHTMLEmail([]string{to}, subject, html)
}

// SendCompletedEmail notifies a participant that all signatures are in.
func (s *Service) SendCompletedEmail(to, recipientName, documentTitle string) error {
	data := CompletedData{
		AppName:       "Signdesk",
		RecipientName: recipientName,
		DocumentTitle: documentTitle,
	}

	subject := fmt.Sprintf("%q has been completed", documentTitle)
	html, err := renderTemplate(completedEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("render completed template: %w", err)
	}

	return s.SendHTMLEmail([]string{to}, subject, html)
}

func renderTemplate(tmpl string, data interface{}) (string, error) {
	t := template.Must(template.New("email").Parse(tmpl))
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const invitationEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Signature requested</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { border-bottom: 2px solid #0066cc; padding-bottom: 10px; margin-bottom: 20px; }
        .button { display: inline-block; padding: 12px 24px; background: #0066cc; color: white; text-decoration: none; border-radius: 4px; margin: 20px 0; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #666; }
        .link { word-break: break-all; color: #0066cc; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.AppName}}</h1>
    </div>

    <h2>Hi {{.RecipientName}},</h2>

    <p>{{.SenderName}} has requested your signature on <strong>{{.DocumentTitle}}</strong>.</p>

    <p>
        <a href="{{.SignURL}}" class="button">Review &amp; Sign</a>
    </p>

    <p>Or copy and paste this link into your browser:</p>
    <p class="link">{{.SignURL}}</p>

    <p>This signing link expires on {{.ExpiresAt}}.</p>

    <div class="footer">
        <p>If you weren't expecting this request, you can safely ignore this email.</p>
    </div>
</body>
</html>`

const completedEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Document completed</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { border-bottom: 2px solid #0066cc; padding-bottom: 10px; margin-bottom: 20px; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.AppName}}</h1>
    </div>

    <h2>Hi {{.RecipientName}},</h2>

    <p>Every signer has completed <strong>{{.DocumentTitle}}</strong>. The finalized document is available from your dashboard.</p>

    <div class="footer">
        <p>You are receiving this because you participated in signing this document.</p>
    </div>
</body>
</html>`
