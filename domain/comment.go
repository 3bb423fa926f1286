package domain

import (
	"context"
	"time"
)

type Comment struct {
	ID      int     `json:"id"`
	OwnerID int     `json:"owner_id" gorm:"notNull;index"`
	Owner   Profile `json:"owner" gorm:"foreignKey:OwnerID"`
	VideoID int     `json:"video_id" gorm:"notNull;index"`
	Content string  `json:"content" gorm:"notNull"`

	Likes []Like `json:"-" gorm:"foreignKey:CommentID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentFilter selects the comments of one video, newest first.
type CommentFilter struct {
	VideoID int
	Page    int
	Limit   int
}

// CommentService is a set of methods to manipulate and work with the Comment
// model. Update and Delete reject actors other than the recorded owner.
type CommentService interface {
	ByVideo(ctx context.Context, filter CommentFilter) ([]Comment, int, error)
	Create(ctx context.Context, comment *Comment) error
	Update(ctx context.Context, id, actorID int, content string) (*Comment, error)
	Delete(ctx context.Context, id, actorID int) error
}
