package mail

import "fmt"

type MailType string

const (
	NewSite      MailType = "NewSite"
	SitePending  MailType = "SitePending"
	SiteApproved MailType = "SiteApproved"
	SiteDeclined MailType = "SiteDeclined"
)

type MailData interface {
	GetMailType() MailType
	GetSubject() string
}

// NewSiteData is the platform's default notification to the network admin.
type NewSiteData struct {
	SiteName    string
	SiteURL     string
	Username    string
	SettingsURL string
}

func (d NewSiteData) GetMailType() MailType {
	return NewSite
}

func (d NewSiteData) GetSubject() string {
	return fmt.Sprintf("New Site Registration: %s", d.SiteURL)
}

type SitePendingData struct {
	SiteName        string
	SiteURL         string
	Username        string
	ProfileURL      string
	PendingURL      string
	NetworkSitesURL string
	SettingsURL     string
}

func (d SitePendingData) GetMailType() MailType {
	return SitePending
}

func (d SitePendingData) GetSubject() string {
	return fmt.Sprintf("New site - %s - added to moderation queue", d.SiteName)
}

type SiteApprovedData struct {
	DisplayName string
	SiteName    string
	AdminURL    string
}

func (d SiteApprovedData) GetMailType() MailType {
	return SiteApproved
}

func (d SiteApprovedData) GetSubject() string {
	return fmt.Sprintf("Your site - %s - is approved", d.SiteName)
}

type SiteDeclinedData struct {
	DisplayName string
	SiteName    string
	SiteURL     string
}

func (d SiteDeclinedData) GetMailType() MailType {
	return SiteDeclined
}

func (d SiteDeclinedData) GetSubject() string {
	return fmt.Sprintf("Your site submission - %s - is declined", d.SiteName)
}
