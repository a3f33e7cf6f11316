package mail

import (
	"fmt"
	"html"
	"strings"

	gomail "gopkg.in/gomail.v2"
)

// SMTPMailer delivers mail through a plain SMTP relay (587 + STARTTLS).
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, pass, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

func (m *SMTPMailer) SendOTP(to, otp string) error {
	body := fmt.Sprintf(
		`<div style="font-family: system-ui, sans-serif;">
  <h2>Email Verification</h2>
  <p>Here is your verification code:</p>
  <div style="font-size: 24px; font-weight: 700; letter-spacing: 0.3em;">%s</div>
  <p style="font-size: 14px; color: #6b7280;">This code will expire in 10 minutes. If you did not request this, you can ignore this email.</p>
</div>`, html.EscapeString(otp))

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your TodoList Email Verification Code")
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send otp mail to %s: %w", to, err)
	}
	return nil
}

func (m *SMTPMailer) SendReminder(to, recipientName string, data ReminderData) error {
	due := "No due date"
	if data.DueDate != nil {
		due = data.DueDate.Format("Monday, January 2, 2006 15:04")
	}

	var sb strings.Builder
	sb.WriteString(`<div style="font-family: system-ui, sans-serif;">`)
	sb.WriteString(fmt.Sprintf("<h2>Task Reminder</h2><p>Hi %s, this task needs your attention:</p>", html.EscapeString(recipientName)))
	sb.WriteString(fmt.Sprintf("<h3>%s</h3>", html.EscapeString(data.Title)))
	if data.Description != "" {
		sb.WriteString(fmt.Sprintf("<p>%s</p>", html.EscapeString(data.Description)))
	}
	sb.WriteString("<ul>")
	sb.WriteString(fmt.Sprintf("<li>Due: %s</li>", html.EscapeString(due)))
	sb.WriteString(fmt.Sprintf(`<li>Priority: <span style="color: %s;">%s</span></li>`, priorityColor(data.Priority), html.EscapeString(data.Priority)))
	if data.CategoryName != "" {
		sb.WriteString(fmt.Sprintf("<li>Category: %s</li>", html.EscapeString(data.CategoryName)))
	}
	sb.WriteString("</ul></div>")

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Reminder: %s", data.Title))
	msg.SetBody("text/html", sb.String())

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send reminder mail to %s: %w", to, err)
	}
	return nil
}

func priorityColor(priority string) string {
	switch priority {
	case "high":
		return "#991b1b"
	case "low":
		return "#166534"
	default:
		return "#92400e"
	}
}
