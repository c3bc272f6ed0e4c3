package jobs

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

// SMTPMailer delivers mail over a plain SMTP relay (Mailpit in development).
type SMTPMailer struct {
	Host string
	Port int
	From string
}

var _ Mailer = (*SMTPMailer)(nil)

// SendInvite emails a project invitation with the redeem token.
func (m *SMTPMailer) SendInvite(ctx context.Context, email, token, projectName string) error {
	subject := fmt.Sprintf("You have been invited to %s", projectName)
	body := fmt.Sprintf(
		"You have been invited to join the project %s.\r\n\r\n"+
			"Redeem your invitation with this token: %s\r\n",
		projectName, token)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.From)
	fmt.Fprintf(&msg, "To: %s\r\n", email)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	addr := net.JoinHostPort(m.Host, strconv.Itoa(m.Port))
	return smtp.SendMail(addr, nil, m.From, []string{email}, []byte(msg.String()))
}
