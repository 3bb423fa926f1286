package crud

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vidtube/domain"
	"vidtube/errs"
)

// newTestDB opens an in-memory database and migrates all models. The pool is
// capped at one connection so every query sees the same memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	err = db.AutoMigrate(
		domain.User{},
		domain.Video{},
		domain.Comment{},
		domain.Tweet{},
		domain.Like{},
	)
	if err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	user := &domain.User{Username: username, Email: username + "@example.com", PasswordHash: "irrelevant"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

func TestDeleteVideoRemovesCommentLikes(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner")
	viewer := seedUser(t, db, "viewer")

	video := &domain.Video{OwnerID: owner.ID, Title: "a video", VideoFile: "v.mp4", Thumbnail: "t.png"}
	if err := db.Omit("Owner").Create(video).Error; err != nil {
		t.Fatalf("seed video: %v", err)
	}
	comment := &domain.Comment{OwnerID: viewer.ID, VideoID: video.ID, Content: "nice"}
	if err := db.Omit("Owner").Create(comment).Error; err != nil {
		t.Fatalf("seed comment: %v", err)
	}
	videoLike := &domain.Like{LikedBy: viewer.ID, VideoID: &video.ID}
	commentLike := &domain.Like{LikedBy: owner.ID, CommentID: &comment.ID}
	if err := db.Create(videoLike).Error; err != nil {
		t.Fatalf("seed video like: %v", err)
	}
	if err := db.Create(commentLike).Error; err != nil {
		t.Fatalf("seed comment like: %v", err)
	}

	videos := NewVideoService(db)
	if err := videos.Delete(ctx, video.ID, owner.ID); err != nil {
		t.Fatalf("delete video: %v", err)
	}

	var likeCount, commentCount int64
	if err := db.Model(&domain.Like{}).Count(&likeCount).Error; err != nil {
		t.Fatalf("count likes: %v", err)
	}
	if likeCount != 0 {
		t.Fatalf("expected no like rows left after deleting the video, got %d", likeCount)
	}
	if err := db.Model(&domain.Comment{}).Count(&commentCount).Error; err != nil {
		t.Fatalf("count comments: %v", err)
	}
	if commentCount != 0 {
		t.Fatalf("expected no comment rows left after deleting the video, got %d", commentCount)
	}
}

func TestDeleteVideoAsNonOwnerIsRejected(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner")
	intruder := seedUser(t, db, "intruder")

	video := &domain.Video{OwnerID: owner.ID, Title: "a video", VideoFile: "v.mp4", Thumbnail: "t.png"}
	if err := db.Omit("Owner").Create(video).Error; err != nil {
		t.Fatalf("seed video: %v", err)
	}

	videos := NewVideoService(db)
	err := videos.Delete(ctx, video.ID, intruder.ID)
	if errs.ErrorCode(err) != errs.EUNAUTHORIZED {
		t.Fatalf("expected code %q, got %q (%v)", errs.EUNAUTHORIZED, errs.ErrorCode(err), err)
	}

	var videoCount int64
	if err := db.Model(&domain.Video{}).Count(&videoCount).Error; err != nil {
		t.Fatalf("count videos: %v", err)
	}
	if videoCount != 1 {
		t.Fatalf("expected the video to survive, got %d rows", videoCount)
	}
}
