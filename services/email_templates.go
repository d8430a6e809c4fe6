package services

import (
	"fmt"
	"html"
)

const PasswordResetSubject = "Password Reset Request"

// PasswordResetEmail renders the body sent for both reset requests and lockouts.
func PasswordResetEmail(link string) string {
	escaped := html.EscapeString(link)
	return fmt.Sprintf(`<p>Hello,</p>
<p>We received a request to reset the password for your account.</p>
<p>Click the link below to choose a new password:</p>
<p><a href="%s">%s</a></p>
<p>If you did not request this, you can ignore this email.</p>`, escaped, escaped)
}

// LockoutEmail is sent when an account reaches the failed login threshold.
func LockoutEmail(link string) string {
	escaped := html.EscapeString(link)
	return fmt.Sprintf(`<p>Hello,</p>
<p>There were too many failed login attempts on your account.</p>
<p>If this was you, reset your password using the link below:</p>
<p><a href="%s">%s</a></p>`, escaped, escaped)
}
