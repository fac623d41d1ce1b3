package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	texttemplate "text/template"
)

// Template names accepted in EmailJob.Template.
const (
	TemplateResetPassword = "reset_password"
	TemplateWelcome       = "welcome"
)

type emailTemplate struct {
	subject string
	text    *texttemplate.Template
	html    *template.Template
}

var templates = map[string]emailTemplate{
	TemplateResetPassword: {
		subject: "Reset your password",
		text: texttemplate.Must(texttemplate.New("reset_text").Parse(
			"Hi {{.Name}},\n\n" +
				"You (or someone else) requested a password reset. Open the link below to choose a new password. " +
				"The link expires in {{.ExpiresInMinutes}} minutes.\n\n{{.ResetURL}}\n\n" +
				"If you did not request this, you can safely ignore this email.\n")),
		html: template.Must(template.New("reset_html").Parse(
			"<p>Hi {{.Name}},</p>" +
				"<p>You (or someone else) requested a password reset. The link expires in {{.ExpiresInMinutes}} minutes.</p>" +
				"<p><a href=\"{{.ResetURL}}\">Reset your password</a></p>" +
				"<p>If you did not request this, you can safely ignore this email.</p>")),
	},
	TemplateWelcome: {
		subject: "Welcome aboard",
		text: texttemplate.Must(texttemplate.New("welcome_text").Parse(
			"Hi {{.Name}},\n\nYour account is ready. Happy learning!\n")),
		html: template.Must(template.New("welcome_html").Parse(
			"<p>Hi {{.Name}},</p><p>Your account is ready. Happy learning!</p>")),
	},
}

// Render produces subject, text and HTML bodies for a named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	tpl, ok := templates[name]
	if !ok {
		return "", "", "", fmt.Errorf("mailer: unknown template %q", name)
	}
	var tb, hb bytes.Buffer
	if err := tpl.text.Execute(&tb, data); err != nil {
		return "", "", "", err
	}
	if err := tpl.html.Execute(&hb, data); err != nil {
		return "", "", "", err
	}
	return tpl.subject, tb.String(), hb.String(), nil
}
