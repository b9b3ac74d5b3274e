// Package templates renders the transactional email bodies. Each template
// gets the job's Data map; missing keys render as empty strings rather
// than failing the job.
package templates

import (
	"bytes"
	"fmt"
	"html/template"
)

const welcomeHTML = `
<div style="font-family: Arial, sans-serif; padding: 20px;">
  <h2>Welcome, {{.Name}}!</h2>
  <p>Your {{.BankName}} account has been successfully created.</p>
  <p><strong>Account Number:</strong> {{.AccountNumber}}</p>
  <p>You can now log in to manage your account, check your balance, and more.</p>
  <br/>
  <p>Thank you for choosing <strong>{{.BankName}}</strong>.</p>
</div>`

const resetLinkHTML = `
<div style="font-family: Arial, sans-serif; padding: 20px;">
  <h3>Hello {{.Name}},</h3>
  <p>You requested to reset your password. Click the link below to set a new one:</p>
  <a href="{{.ResetURL}}" style="color: #1a73e8;">Reset Password</a>
  <p>This link will expire in {{.ExpiresIn}}.</p>
  <p>If you didn't request this, please ignore this message.</p>
</div>`

const resetConfirmationHTML = `
<div style="font-family: Arial, sans-serif; padding: 20px;">
  <h3>Hello {{.Name}},</h3>
  <p>Your password has been successfully updated.</p>
  <p>If this wasn't you, please contact our support immediately.</p>
</div>`

type emailTemplate struct {
	subject string
	body    *template.Template
}

var registry = map[string]emailTemplate{
	"welcome": {
		subject: "Welcome to {{.BankName}}!",
		body:    template.Must(template.New("welcome").Option("missingkey=zero").Parse(welcomeHTML)),
	},
	"reset_link": {
		subject: "Password Reset Request",
		body:    template.Must(template.New("reset_link").Option("missingkey=zero").Parse(resetLinkHTML)),
	},
	"reset_confirmation": {
		subject: "Your Password Has Been Reset",
		body:    template.Must(template.New("reset_confirmation").Option("missingkey=zero").Parse(resetConfirmationHTML)),
	},
}

// Render returns subject, text and html for a named template. Text is left
// empty; the bodies are HTML-only like the originals.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	t, ok := registry[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
	subjTpl, err := template.New(name + "-subject").Option("missingkey=zero").Parse(t.subject)
	if err != nil {
		return "", "", "", err
	}
	var sb, hb bytes.Buffer
	if err := subjTpl.Execute(&sb, data); err != nil {
		return "", "", "", err
	}
	if err := t.body.Execute(&hb, data); err != nil {
		return "", "", "", err
	}
	return sb.String(), "", hb.String(), nil
}
