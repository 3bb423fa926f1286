package crud

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vidtube/domain"
	"vidtube/errs"
)

// LikeService manages Likes.
// It implements the domain.LikeService interface.
type LikeService struct {
	likeValidator
}

// likeValidator runs validations on incoming Like data.
// On success, it passes the data on to likeGorm.
// Otherwise, it returns the error of the validation that has failed.
type likeValidator struct {
	likeGorm
}

// likeGorm runs CRUD operations on the database using incoming Like data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type likeGorm struct {
	db *gorm.DB
}

// NewLikeService returns an instance of LikeService.
func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{
		likeValidator{
			likeGorm{
				db: db,
			},
		},
	}
}

// Ensure the LikeService struct properly implements the domain.LikeService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.LikeService = &LikeService{}

// Toggle runs validations needed for flipping a like and hands the flip down.
func (lv *likeValidator) Toggle(ctx context.Context, subject domain.SubjectType, subjectID, actorID int) (bool, error) {
	if !subject.Valid() {
		return false, errs.Errorf(errs.EINVALID, "Unknown like subject type.")
	}
	if subjectID <= 0 {
		return false, errs.Errorf(errs.EINVALID, "A valid %s id is required.", subject)
	}
	if actorID <= 0 {
		return false, errs.Errorf(errs.EINVALID, "Actor ID is required.")
	}
	if err := lv.subjectExists(ctx, subject, subjectID); err != nil {
		return false, err
	}
	return lv.likeGorm.Toggle(ctx, subject, subjectID, actorID)
}

// subjectExists makes sure the entity being liked actually exists,
// so no orphan like rows can be created.
func (lv *likeValidator) subjectExists(ctx context.Context, subject domain.SubjectType, subjectID int) error {
	var err error
	switch subject {
	case domain.SubjectVideo:
		err = lv.db.WithContext(ctx).First(&domain.Video{}, "id = ?", subjectID).Error
	case domain.SubjectComment:
		err = lv.db.WithContext(ctx).First(&domain.Comment{}, "id = ?", subjectID).Error
	case domain.SubjectTweet:
		err = lv.db.WithContext(ctx).First(&domain.Tweet{}, "id = ?", subjectID).Error
	}
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.Errorf(errs.ENOTFOUND, "The liked %s does not exist.", subject)
		}
		return err
	}
	return nil
}

// subjectColumn maps a subject type to the likes column referencing it.
func subjectColumn(subject domain.SubjectType) string {
	switch subject {
	case domain.SubjectVideo:
		return "video_id"
	case domain.SubjectComment:
		return "comment_id"
	case domain.SubjectTweet:
		return "tweet_id"
	}
	return ""
}

// Toggle flips the liked state with a single conditional insert keyed on the
// unique (liked_by, subject) index. If the insert lands, the call liked the
// subject. If it conflicts away, the existing row is deleted instead. Either
// way there is no read-then-write window for a duplicate to slip through.
func (lg *likeGorm) Toggle(ctx context.Context, subject domain.SubjectType, subjectID, actorID int) (bool, error) {
	column := subjectColumn(subject)

	like := domain.Like{LikedBy: actorID}
	switch subject {
	case domain.SubjectVideo:
		like.VideoID = &subjectID
	case domain.SubjectComment:
		like.CommentID = &subjectID
	case domain.SubjectTweet:
		like.TweetID = &subjectID
	}

	res := lg.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "liked_by"}, {Name: column}},
			DoNothing: true,
		}).
		Create(&like)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	// The like already existed, so this toggle removes it. A toggle racing
	// this delete may remove it first; the state converges to unliked
	// either way.
	err := lg.db.WithContext(ctx).
		Where("liked_by = ? AND "+column+" = ?", actorID, subjectID).
		Delete(&domain.Like{}).Error
	if err != nil {
		return false, err
	}
	return false, nil
}

// LikedVideos retrieves one page of the actor's video likes, newest like
// first, with the liked video and its owner profile joined in. It returns
// the page plus the actor's total video like count.
func (lg *likeGorm) LikedVideos(ctx context.Context, actorID, page, limit int) ([]domain.Like, int, error) {
	page, limit = normalizePage(page, limit)

	var total int64
	err := lg.db.WithContext(ctx).
		Model(&domain.Like{}).
		Where("liked_by = ? AND video_id IS NOT NULL", actorID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var likes []domain.Like
	err = lg.db.WithContext(ctx).
		Where("liked_by = ? AND video_id IS NOT NULL", actorID).
		Preload("Video.Owner").
		Order("created_at desc, id desc").
		Offset(pageOffset(page, limit)).
		Limit(limit).
		Find(&likes).Error
	if err != nil {
		return nil, 0, err
	}
	return likes, int(total), nil
}
