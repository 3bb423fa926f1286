package domain

import (
	"context"
	"time"
)

type Tweet struct {
	ID      int     `json:"id"`
	OwnerID int     `json:"owner_id" gorm:"notNull;index"`
	Owner   Profile `json:"owner" gorm:"foreignKey:OwnerID"`
	Content string  `json:"content" gorm:"notNull"`

	Likes []Like `json:"-" gorm:"foreignKey:TweetID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TweetFilter selects the tweets of one user, newest first.
type TweetFilter struct {
	OwnerID int
	Page    int
	Limit   int
}

// TweetService is a set of methods to manipulate and work with the Tweet
// model. Update and Delete reject actors other than the recorded owner.
type TweetService interface {
	ByUser(ctx context.Context, filter TweetFilter) ([]Tweet, int, error)
	Create(ctx context.Context, tweet *Tweet) error
	Update(ctx context.Context, id, actorID int, content string) (*Tweet, error)
	Delete(ctx context.Context, id, actorID int) error
}
