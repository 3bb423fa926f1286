package domain

import (
	"context"
	"time"
)

type Video struct {
	ID      int     `json:"id"`
	OwnerID int     `json:"owner_id" gorm:"notNull;index"`
	Owner   Profile `json:"owner" gorm:"foreignKey:OwnerID"`

	Title       string  `json:"title" gorm:"notNull"`
	Description string  `json:"description"`
	VideoFile   string  `json:"video_file" gorm:"notNull"`
	Thumbnail   string  `json:"thumbnail" gorm:"notNull"`
	Duration    float64 `json:"duration"`
	Views       int     `json:"views"`
	IsPublished bool    `json:"is_published" gorm:"default:true"`

	Comments []Comment `json:"-" gorm:"foreignKey:VideoID"`
	Likes    []Like    `json:"-" gorm:"foreignKey:VideoID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VideoFilter narrows and orders a video feed. Query matches title or
// description case-insensitively. Page and Limit below 1 fall back to the
// defaults (1 and 10).
type VideoFilter struct {
	Query   string
	OwnerID *int

	SortBy   string
	SortDesc bool

	Page  int
	Limit int
}

// VideoUpdate carries the mutable video fields. Nil fields are left untouched.
type VideoUpdate struct {
	Title       *string
	Description *string
	VideoFile   *string
	Thumbnail   *string
	Duration    *float64
}

// VideoService is a set of methods to manipulate and work with the Video model.
// Update, Delete and TogglePublish reject actors other than the recorded owner.
type VideoService interface {
	ByID(ctx context.Context, id int) (*Video, error)
	// View fetches a video like ByID and counts the view.
	View(ctx context.Context, id int) (*Video, error)
	Find(ctx context.Context, filter VideoFilter) ([]Video, int, error)
	Create(ctx context.Context, video *Video) error
	Update(ctx context.Context, id, actorID int, upd VideoUpdate) (*Video, error)
	Delete(ctx context.Context, id, actorID int) error
	TogglePublish(ctx context.Context, id, actorID int) (*Video, error)
}
