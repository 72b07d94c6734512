package db

import (
	"encoding/json"
	"fmt"

	"github.com/Builder-Lawyers/site-moderation/internal/application/events"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/mail"
)

func MapOutboxModelToSendMail(outbox Outbox) (events.SendMail, error) {
	var sendMail events.SendMail
	if err := json.Unmarshal(outbox.Payload, &sendMail); err != nil {
		return events.SendMail{}, fmt.Errorf("error unmarshaling event, %v", err)
	}
	return sendMail, nil
}

func MapOutboxModelToPurgeSiteFiles(outbox Outbox) (events.PurgeSiteFiles, error) {
	var purge events.PurgeSiteFiles
	if err := json.Unmarshal(outbox.Payload, &purge); err != nil {
		return events.PurgeSiteFiles{}, fmt.Errorf("error unmarshaling event, %v", err)
	}
	return purge, nil
}

func MapToMailData(event events.SendMail) (mail.MailData, error) {
	var data mail.MailData
	switch event.MailType {
	case mail.NewSite:
		var d mail.NewSiteData
		err := json.Unmarshal(event.Data, &d)
		data = d
		if err != nil {
			return nil, fmt.Errorf("error mapping to mailData, %v", err)
		}
	case mail.SitePending:
		var d mail.SitePendingData
		err := json.Unmarshal(event.Data, &d)
		data = d
		if err != nil {
			return nil, fmt.Errorf("error mapping to mailData, %v", err)
		}
	case mail.SiteApproved:
		var d mail.SiteApprovedData
		err := json.Unmarshal(event.Data, &d)
		data = d
		if err != nil {
			return nil, fmt.Errorf("error mapping to mailData, %v", err)
		}
	case mail.SiteDeclined:
		var d mail.SiteDeclinedData
		err := json.Unmarshal(event.Data, &d)
		data = d
		if err != nil {
			return nil, fmt.Errorf("error mapping to mailData, %v", err)
		}
	default:
		return nil, fmt.Errorf("no such mailData type exists, %v", event.MailType)
	}
	return data, nil
}
