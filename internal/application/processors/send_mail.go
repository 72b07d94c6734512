package processors

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/Builder-Lawyers/site-moderation/internal/application/events"
	"github.com/Builder-Lawyers/site-moderation/internal/domain/consts"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/db"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/db/repo"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/mail"
	dbs "github.com/Builder-Lawyers/site-moderation/pkg/db"
	shared "github.com/Builder-Lawyers/site-moderation/pkg/interfaces"
	"github.com/google/uuid"
)

type SendMail struct {
	server     mail.Sender
	uowFactory *dbs.UOWFactory
}

func NewSendMail(server mail.Sender, uowFactory *dbs.UOWFactory) *SendMail {
	return &SendMail{server: server, uowFactory: uowFactory}
}

// Handle renders the mail template of the event, logs the mail and sends it.
// The returned UoW is left open for the poller to finish.
func (c *SendMail) Handle(ctx context.Context, event events.SendMail) (shared.UoW, error) {
	mailData, err := db.MapToMailData(event)
	if err != nil {
		return nil, err
	}
	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}

	recipients := make([]string, 0, 1)
	if event.To != "" {
		recipients = append(recipients, event.To)
	} else {
		userID, err := uuid.Parse(event.UserID)
		if err != nil {
			return uow, fmt.Errorf("mail has no recipient, %v", err)
		}
		user, err := repo.NewUserRepo(tx).GetUser(ctx, userID)
		if err != nil {
			return uow, err
		}
		recipients = append(recipients, user.Email)
	}

	var mailTemplate string
	err = tx.QueryRow(ctx, "SELECT content FROM platform.mail_templates WHERE type = $1", mailData.GetMailType()).Scan(&mailTemplate)
	if err != nil {
		return uow, fmt.Errorf("error getting mail template %v, %v", mailData.GetMailType(), err)
	}

	body, err := renderText(mailTemplate, mailData)
	if err != nil {
		return uow, fmt.Errorf("error rendering mail, %v", err)
	}

	networkName, err := repo.NewMetaRepo(tx).GetNetworkOption(ctx, consts.NetworkSiteName)
	if err != nil {
		return uow, err
	}

	sent := db.Mail{
		MailType:   mailData.GetMailType(),
		Recipients: strings.Join(recipients, ","),
		Subject:    Subject(networkName, event.Subject),
		Content:    body,
		SentAt:     time.Now(),
	}
	_, err = tx.Exec(ctx, "INSERT INTO platform.mails(type, recipients, subject, content, sent_at) VALUES ($1,$2,$3,$4,$5)",
		sent.MailType, sent.Recipients, sent.Subject, sent.Content, sent.SentAt,
	)
	if err != nil {
		return uow, err
	}
	err = c.server.SendMail(recipients, sent.Subject, sent.Content)
	if err != nil {
		return uow, err
	}

	return uow, nil
}

// Subject prefixes subject with the network name in brackets.
func Subject(networkName, subject string) string {
	networkName = strings.TrimSpace(networkName)
	if networkName == "" {
		return subject
	}
	return "[" + networkName + "] " + subject
}

func renderText(tmpl string, data mail.MailData) (string, error) {
	t, err := template.New("email").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
