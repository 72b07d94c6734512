package consts

// ModerationKey marks a site as pending. The value is the creator's user ID.
const ModerationKey = "moderate_user_id"

const DefaultModerationScope = "pending"

// ReservedPaths are first path segments served by the platform itself.
var ReservedPaths = []string{"sites", "moderation", "logout", "register", "api", "network"}

const (
	MetaName         = "name"
	MetaLastActivity = "last_activity"
	OptionBlogname   = "blogname"
)

const (
	NetworkAdminEmail               = "admin_email"
	NetworkRegistrationNotification = "registration_notification"
	NetworkSiteName                 = "site_name"
)

type SortType string

const (
	SortActive       SortType = "active"
	SortAlphabetical SortType = "alphabetical"
	SortNewest       SortType = "newest"
	SortRandom       SortType = "random"
)

func ParseSortType(s string) SortType {
	switch SortType(s) {
	case SortAlphabetical, SortNewest, SortRandom:
		return SortType(s)
	}
	return SortActive
}

type ModerationAction string

const (
	ActionApprove ModerationAction = "approve"
	ActionDecline ModerationAction = "decline"
)

const ScopeAll = "all"
