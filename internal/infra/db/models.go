package db

import (
	"encoding/json"
	"time"

	"github.com/Builder-Lawyers/site-moderation/internal/domain/consts"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/mail"
	"github.com/google/uuid"
)

type Site struct {
	ID           uint64    `db:"id"`
	Domain       string    `db:"domain"`
	Path         string    `db:"path"`
	Archived     bool      `db:"archived"`
	Spam         bool      `db:"spam"`
	Mature       bool      `db:"mature"`
	Deleted      bool      `db:"deleted"`
	RegisteredAt time.Time `db:"registered_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type User struct {
	ID          uuid.UUID `db:"id"`
	Username    string    `db:"username"`
	DisplayName string    `db:"display_name"`
	Email       string    `db:"email"`
	SuperAdmin  bool      `db:"is_super_admin"`
	Spammer     bool      `db:"is_spammer"`
	CreatedAt   time.Time `db:"created_at,omitempty"`
}

// ListedSite is one row of a directory listing, pending or public.
type ListedSite struct {
	SiteID         uint64    `db:"site_id"`
	AdminUserID    uuid.UUID `db:"admin_user_id"`
	AdminUsername  string    `db:"admin_username"`
	AdminUserEmail string    `db:"admin_user_email"`
	Domain         string    `db:"domain"`
	Path           string    `db:"path"`
	LastActivity   string    `db:"last_activity"`
	Name           string    `db:"name"`
	RegisteredAt   time.Time `db:"registered_at"`
}

// Paging bounds for directory listings.
const (
	MaxPerPage = 100
	MaxPage    = 10000
)

type ListParams struct {
	Sort    consts.SortType
	Page    int
	PerPage int
	UserID  *uuid.UUID
	Search  string
}

// Window returns the LIMIT and OFFSET of the requested page, clamped to
// MaxPerPage and MaxPage. ok is false when no paging was requested.
func (p ListParams) Window() (limit, offset int, ok bool) {
	if p.PerPage <= 0 || p.Page <= 0 {
		return 0, 0, false
	}
	limit = min(p.PerPage, MaxPerPage)
	return limit, (min(p.Page, MaxPage) - 1) * limit, true
}

type ListResult struct {
	Sites []ListedSite
	Total int
}

type Outbox struct {
	ID        uint64          `db:"id"`
	Event     string          `db:"event"`
	Status    int             `db:"status"`
	Payload   json.RawMessage `db:"payload"`
	CreatedAt time.Time       `db:"created_at"`
}

type Mail struct {
	ID         uint64        `db:"id"`
	MailType   mail.MailType `db:"type"`
	Recipients string        `db:"recipients"`
	Subject    string        `db:"subject"`
	Content    string        `db:"content"`
	SentAt     time.Time     `db:"sent_at"`
}
