package model

import (
	"context"
	"errors"
)

// User is an identity record. TgUserID may be zero for users an admin
// pre-registered by username before their first contact with the bot.
type User struct {
	ID       int
	TgUserID int64
	Username string
	IsAdmin  bool
}

func NewUser(username string, tgUserID int64) *User {
	return &User{
		Username: username,
		TgUserID: tgUserID,
	}
}

var ErrUserNotFound = errors.New("user not found")

// UserFilter narrows ListUsers. Zero values mean "no exclusion".
type UserFilter struct {
	ExcludeTgUserID   int64
	ExcludeUsername   string
	NotAssignedToTask int
}

type UserRepository interface {
	FetchUserByID(ctx context.Context, id int) (*User, error)
	FetchUserByTgID(ctx context.Context, tgUserID int64) (*User, error)
	FetchUserByUsername(ctx context.Context, username string) (*User, error)
	// GetOrCreateUser looks a user up by Telegram id first, then by username,
	// creating the record when neither matches. The admin flag is promote-only:
	// an existing admin is never demoted here. The stored Telegram id and
	// username are refreshed with the latest observed values.
	GetOrCreateUser(ctx context.Context, username string, tgUserID int64, isAdmin bool) (*User, error)
	UpdateUser(ctx context.Context, user *User) error
	ToggleAdmin(ctx context.Context, id int) error
	DeleteUser(ctx context.Context, id int) error
	ListUsers(ctx context.Context, filter UserFilter) ([]User, error)
}
