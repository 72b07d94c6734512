package events

import (
	"encoding/json"

	"github.com/Builder-Lawyers/site-moderation/internal/infra/mail"
)

// SendMail is delivered by the outbox poller. Recipient is either a platform
// user (UserID) or a raw address (To).
type SendMail struct {
	UserID   string          `json:"userID,omitempty"`
	To       string          `json:"to,omitempty"`
	MailType mail.MailType   `json:"mailType"`
	Subject  string          `json:"subject"`
	Data     json.RawMessage `json:"data"`
}

func (e SendMail) GetType() string {
	return "SendMail"
}

func NewSendMail(userID, to string, data mail.MailData) (SendMail, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return SendMail{}, err
	}
	return SendMail{
		UserID:   userID,
		To:       to,
		MailType: data.GetMailType(),
		Subject:  data.GetSubject(),
		Data:     raw,
	}, nil
}

type PurgeSiteFiles struct {
	SiteID uint64 `json:"siteID"`
}

func (e PurgeSiteFiles) GetType() string {
	return "PurgeSiteFiles"
}
