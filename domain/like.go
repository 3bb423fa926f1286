package domain

import (
	"context"
	"time"
)

const (
	// SubjectVideo expresses that a Like points at a Video.
	SubjectVideo SubjectType = "video"
	// SubjectComment expresses that a Like points at a Comment.
	SubjectComment SubjectType = "comment"
	// SubjectTweet expresses that a Like points at a Tweet.
	SubjectTweet SubjectType = "tweet"
)

// SubjectType names the kind of entity a Like points at.
type SubjectType string

// Valid reports whether the subject type is one of the known kinds.
func (s SubjectType) Valid() bool {
	return s == SubjectVideo || s == SubjectComment || s == SubjectTweet
}

// Like represents a "user likes subject" relation. Exactly one of VideoID,
// CommentID and TweetID is set. Existence of the row is the liked state;
// a composite unique index per subject column keeps it to at most one row
// per (actor, subject) pair.
type Like struct {
	ID      int `json:"id"`
	LikedBy int `json:"liked_by" gorm:"notNull;index"`

	VideoID   *int `json:"video_id,omitempty"`
	CommentID *int `json:"comment_id,omitempty"`
	TweetID   *int `json:"tweet_id,omitempty"`

	Video *Video `json:"video,omitempty" gorm:"foreignKey:VideoID"`

	CreatedAt time.Time `json:"created_at"`
}

// LikeService is a set of methods to manipulate and work with the Like model.
type LikeService interface {
	// Toggle flips the liked state for (actor, subject) and reports the
	// resulting state: true if the call created the like, false if it
	// removed it.
	Toggle(ctx context.Context, subject SubjectType, subjectID, actorID int) (bool, error)
	// LikedVideos lists the actor's liked videos, owner profile included,
	// newest like first.
	LikedVideos(ctx context.Context, actorID, page, limit int) ([]Like, int, error)
}
