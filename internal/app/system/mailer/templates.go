// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// VerificationEmailData holds data for the account verification email.
type VerificationEmailData struct {
	FirstName string
	VerifyURL string
	ExpiresIn string // e.g. "24 hours"
}

// BuildVerificationEmail creates the account verification email with
// both HTML and text bodies. The caller sets To.
func BuildVerificationEmail(data VerificationEmailData) Email {
	return Email{
		Subject:  "Email Verification for StackMentor.io",
		TextBody: buildVerificationText(data),
		HTMLBody: buildVerificationHTML(data),
	}
}

func buildVerificationText(data VerificationEmailData) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Hi %s,\n\n", data.FirstName)
	buf.WriteString("Welcome to StackMentor. Click the link below to verify your email address:\n\n")
	buf.WriteString(data.VerifyURL + "\n\n")
	fmt.Fprintf(&buf, "This link expires in %s.\n\n", data.ExpiresIn)
	buf.WriteString("If you did not create an account, you can safely ignore this email.\n")
	return buf.String()
}

func buildVerificationHTML(data VerificationEmailData) string {
	tmpl := template.Must(template.New("verification").Parse(verificationHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

const verificationHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Verify your email</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #4f46e5;">StackMentor</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">
                Hi {{.FirstName}}, welcome to StackMentor. Click the button below to verify your email address.
              </p>
              <div style="text-align: center; margin-bottom: 24px;">
                <a href="{{.VerifyURL}}" style="display: inline-block; background-color: #4f46e5; color: #ffffff; font-size: 16px; font-weight: 600; text-decoration: none; padding: 12px 32px; border-radius: 8px;">Verify Email</a>
              </div>
              <p style="margin: 0 0 24px; font-size: 14px; color: #6b7280; text-align: center;">
                This link expires in {{.ExpiresIn}}.
              </p>
              <p style="margin: 0; font-size: 14px; color: #9ca3af; line-height: 1.5;">
                If you did not create an account, you can safely ignore this email.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
