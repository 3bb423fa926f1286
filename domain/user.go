package domain

import (
	"context"
	"time"
)

type User struct {
	ID         int    `json:"id"`
	Username   string `json:"username" gorm:"notNull;uniqueIndex"`
	Email      string `json:"email" gorm:"notNull;uniqueIndex"`
	FullName   string `json:"full_name"`
	Avatar     string `json:"avatar"`
	CoverImage string `json:"cover_image"`

	// Password only ever holds the plaintext from an incoming register or
	// login body. PasswordHash is what gets persisted. Neither is ever
	// serialized back out.
	Password     string `json:"password,omitempty" gorm:"-"`
	PasswordHash string `json:"-" gorm:"notNull"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile is the restricted public projection of a User that gets joined
// into feeds. It carries no credentials or private fields.
type Profile struct {
	ID       int    `json:"id"`
	FullName string `json:"full_name"`
	Avatar   string `json:"avatar"`
	Username string `json:"username"`
}

// TableName points the Profile projection at the users table.
func (Profile) TableName() string {
	return "users"
}

// UserService is a set of methods to manipulate and work with the User model.
type UserService interface {
	ByID(ctx context.Context, id int) (*User, error)
	Create(ctx context.Context, user *User) error
	Authenticate(ctx context.Context, email, password string) (*User, error)
}
