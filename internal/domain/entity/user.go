package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Username     string
	DisplayName  string
	Email        string
	SuperAdmin   bool
	Spammer      bool
	RegisteredAt time.Time
}
