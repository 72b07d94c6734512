package query

import (
	"context"

	"github.com/Builder-Lawyers/site-moderation/internal/infra/auth"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/db/repo"
	dbs "github.com/Builder-Lawyers/site-moderation/pkg/db"
)

type GetIdentity struct {
	uowFactory *dbs.UOWFactory
	provider   *auth.IdentityProvider
}

func NewGetIdentity(uowFactory *dbs.UOWFactory, provider *auth.IdentityProvider) *GetIdentity {
	return &GetIdentity{uowFactory: uowFactory, provider: provider}
}

// Query verifies a session token and fills the identity's roles from the
// users table.
func (q *GetIdentity) Query(ctx context.Context, token string) (identity *auth.Identity, err error) {
	identity, err = q.provider.GetIdentity(token)
	if err != nil {
		return nil, err
	}

	uow := q.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}
	defer uow.Finalize(&err)

	user, err := repo.NewUserRepo(tx).GetUser(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	identity.Username = user.Username
	identity.SuperAdmin = user.SuperAdmin
	return identity, nil
}
