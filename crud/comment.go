package crud

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"vidtube/domain"
	"vidtube/errs"
)

// CommentService manages Comments.
// It implements the domain.CommentService interface.
type CommentService struct {
	commentValidator
}

// commentValidator runs validations on incoming Comment data.
// On success, it passes the data on to commentGorm.
// Otherwise, it returns the error of the validation that has failed.
type commentValidator struct {
	commentGorm
}

// commentGorm runs CRUD operations on the database using incoming Comment data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type commentGorm struct {
	db *gorm.DB
}

// NewCommentService returns an instance of CommentService.
func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{
		commentValidator{
			commentGorm{
				db: db,
			},
		},
	}
}

// Ensure the CommentService struct properly implements the domain.CommentService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.CommentService = &CommentService{}

// Create runs validations needed for creating new Comment database records.
func (cv *commentValidator) Create(ctx context.Context, comment *domain.Comment) error {
	err := runCommentValFns(comment,
		cv.ownerIdValid,
		cv.contentRequired,
		cv.commentedVideoExists(ctx),
	)
	if err != nil {
		return err
	}
	return cv.commentGorm.Create(ctx, comment)
}

// Update validates the new content before handing the write down.
func (cv *commentValidator) Update(ctx context.Context, id, actorID int, content string) (*domain.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errs.Errorf(errs.EINVALID, "Comment content must not be empty.")
	}
	return cv.commentGorm.Update(ctx, id, actorID, content)
}

// runCommentValFns runs any number of functions of type commentValFn on the passed in Comment object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runCommentValFns(comment *domain.Comment, fns ...commentValFn) error {
	for _, fn := range fns {
		if err := fn(comment); err != nil {
			return err
		}
	}
	return nil
}

// A commentValFn is any function that takes in a pointer to a domain.Comment object and returns an error.
type commentValFn func(comment *domain.Comment) error

// ownerIdValid ensures the ownerId is not empty.
func (cv *commentValidator) ownerIdValid(comment *domain.Comment) error {
	if comment.OwnerID <= 0 {
		return errs.Errorf(errs.EINVALID, "Owner ID is required.")
	}
	return nil
}

// contentRequired makes sure the comment content is not blank.
func (cv *commentValidator) contentRequired(comment *domain.Comment) error {
	if strings.TrimSpace(comment.Content) == "" {
		return errs.Errorf(errs.EINVALID, "Comment content must not be empty.")
	}
	return nil
}

// commentedVideoExists makes sure the video being commented on actually exists.
func (cv *commentValidator) commentedVideoExists(ctx context.Context) commentValFn {
	return func(comment *domain.Comment) error {
		err := cv.db.WithContext(ctx).First(&domain.Video{}, "id = ?", comment.VideoID).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errs.Errorf(errs.ENOTFOUND, "The commented video does not exist.")
			}
			return err
		}
		return nil
	}
}

// ByVideo retrieves one page of a video's comments, owner profile included,
// newest first. It returns the page plus the total comment count of the video.
func (cg *commentGorm) ByVideo(ctx context.Context, filter domain.CommentFilter) ([]domain.Comment, int, error) {
	page, limit := normalizePage(filter.Page, filter.Limit)

	var total int64
	err := cg.db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("video_id = ?", filter.VideoID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var comments []domain.Comment
	err = cg.db.WithContext(ctx).
		Where("video_id = ?", filter.VideoID).
		Preload("Owner").
		Order("created_at desc, id desc").
		Offset(pageOffset(page, limit)).
		Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, int(total), nil
}

// Create stores the data from the Comment object in a new database record
// and preloads the owner profile for the response.
func (cg *commentGorm) Create(ctx context.Context, comment *domain.Comment) error {
	if err := cg.db.WithContext(ctx).Create(comment).Error; err != nil {
		return err
	}
	return cg.db.WithContext(ctx).Preload("Owner").First(comment, "id = ?", comment.ID).Error
}

// Update replaces the content of the comment owned by actorID.
func (cg *commentGorm) Update(ctx context.Context, id, actorID int, content string) (*domain.Comment, error) {
	comment, err := cg.byID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.OwnerID != actorID {
		return nil, errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to edit this comment.")
	}
	err = cg.db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("id = ?", id).
		UpdateColumn("content", content).Error
	if err != nil {
		return nil, err
	}
	return cg.byID(ctx, id)
}

// Delete permanently deletes the comment owned by actorID, along with its likes.
func (cg *commentGorm) Delete(ctx context.Context, id, actorID int) error {
	comment, err := cg.byID(ctx, id)
	if err != nil {
		return err
	}
	if comment.OwnerID != actorID {
		return errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to delete this comment.")
	}
	return cg.db.WithContext(ctx).
		Select("Likes").
		Delete(comment).Error
}

// byID retrieves a single Comment by ID, owner profile included.
func (cg *commentGorm) byID(ctx context.Context, id int) (*domain.Comment, error) {
	var comment domain.Comment
	err := cg.db.WithContext(ctx).
		Preload("Owner").
		First(&comment, "id = ?", id).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "The comment does not exist.")
		}
		return nil, err
	}
	return &comment, nil
}
