package mail

import (
	"fmt"
	netmail "net/mail"
	"net/smtp"
	"sort"
	"strings"
)

type Sender interface {
	SendMail(to []string, subject, body string) error
}

type MailServer struct {
	cfg  *MailConfig
	auth smtp.Auth
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

var _ Sender = (*MailServer)(nil)

func NewMailServer(cfg *MailConfig) *MailServer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.SMTPHost)
	}
	return &MailServer{
		cfg:  cfg,
		auth: auth,
		send: smtp.SendMail,
	}
}

func (m *MailServer) SendMail(to []string, subject, body string) error {
	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort

	err := m.send(addr, m.auth, m.cfg.From, to, BuildMessage(m.cfg.From, to, subject, body))
	if err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

// BuildMessage renders a plain text RFC 822 message with sorted headers.
func BuildMessage(from string, to []string, subject, body string) []byte {
	headers := make(map[string]string)
	headers["From"] = headerValue(from)
	headers["To"] = headerValue(strings.Join(to, ","))
	headers["Subject"] = headerValue(subject)
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/plain; charset=\"utf-8\""

	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var msg strings.Builder
	for _, k := range keys {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", k, headers[k]))
	}

	msg.WriteString("\r\n" + body)
	return []byte(msg.String())
}

// headerValue folds line breaks into spaces so a value stays on its header line.
func headerValue(v string) string {
	return strings.Join(strings.FieldsFunc(v, func(r rune) bool {
		return r == '\r' || r == '\n'
	}), " ")
}

// IsEmail reports whether s is a single bare address.
func IsEmail(s string) bool {
	addr, err := netmail.ParseAddress(s)
	return err == nil && addr.Address == strings.TrimSpace(s)
}
