package consts

type OutboxStatus int

const (
	NotProcessed OutboxStatus = iota
	Processed
	Processing
	InError
)

const (
	CookieScope   = "sites-scope"
	CookieFilter  = "sites-filter"
	CookieMessage = "sites-message"
	CookieSession = "sm_session"
)

const (
	QuerySiteID  = "site_id"
	QueryApprove = "sm-approve"
	QueryDecline = "sm-decline"
)

const DefaultPerPage = 20
