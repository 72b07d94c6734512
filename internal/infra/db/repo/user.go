package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Builder-Lawyers/site-moderation/internal/application/errs"
	"github.com/Builder-Lawyers/site-moderation/internal/application/interfaces"
	"github.com/Builder-Lawyers/site-moderation/internal/domain/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepo struct {
	tx pgx.Tx
}

var _ interfaces.UserRepo = (*UserRepo)(nil)

func NewUserRepo(tx pgx.Tx) *UserRepo {
	return &UserRepo{tx: tx}
}

func (r *UserRepo) GetUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := r.tx.QueryRow(ctx, `SELECT id, username, display_name, email, is_super_admin, is_spammer, created_at
		FROM platform.users WHERE id = $1`, userID).Scan(&user.ID, &user.Username, &user.DisplayName, &user.Email,
		&user.SuperAdmin, &user.Spammer, &user.RegisteredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFoundError{Entity: "user", ID: userID}
		}
		return nil, fmt.Errorf("err getting user, %v", err)
	}
	if user.DisplayName == "" {
		user.DisplayName = user.Username
	}
	return &user, nil
}
