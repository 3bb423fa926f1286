package crud

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"vidtube/domain"
	"vidtube/errs"
)

// VideoService manages Videos.
// It implements the domain.VideoService interface.
type VideoService struct {
	videoValidator
}

// videoValidator runs validations on incoming Video data.
// On success, it passes the data on to videoGorm.
// Otherwise, it returns the error of the validation that has failed.
type videoValidator struct {
	videoGorm
}

// videoGorm runs CRUD operations on the database using incoming Video data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type videoGorm struct {
	db *gorm.DB
}

// NewVideoService returns an instance of VideoService.
func NewVideoService(db *gorm.DB) *VideoService {
	return &VideoService{
		videoValidator{
			videoGorm{
				db: db,
			},
		},
	}
}

// Ensure the VideoService struct properly implements the domain.VideoService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.VideoService = &VideoService{}

// Create runs validations needed for creating new Video database records.
func (vv *videoValidator) Create(ctx context.Context, video *domain.Video) error {
	err := runVideoValFns(video,
		vv.ownerIdValid,
		vv.titleRequired,
		vv.mediaRequired,
	)
	if err != nil {
		return err
	}
	return vv.videoGorm.Create(ctx, video)
}

// Update verifies ownership, applies the non-nil fields of upd, and returns
// the updated video. Non-owners are rejected before anything is written.
func (vv *videoValidator) Update(ctx context.Context, id, actorID int, upd domain.VideoUpdate) (*domain.Video, error) {
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return nil, errs.Errorf(errs.EINVALID, "Video title must not be empty.")
	}
	return vv.videoGorm.Update(ctx, id, actorID, upd)
}

// runVideoValFns runs any number of functions of type videoValFn on the passed in Video object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runVideoValFns(video *domain.Video, fns ...videoValFn) error {
	for _, fn := range fns {
		if err := fn(video); err != nil {
			return err
		}
	}
	return nil
}

// A videoValFn is any function that takes in a pointer to a domain.Video object and returns an error.
type videoValFn func(video *domain.Video) error

// ownerIdValid ensures the ownerId is not empty.
func (vv *videoValidator) ownerIdValid(video *domain.Video) error {
	if video.OwnerID <= 0 {
		return errs.Errorf(errs.EINVALID, "Owner ID is required.")
	}
	return nil
}

// titleRequired makes sure the title is not blank.
func (vv *videoValidator) titleRequired(video *domain.Video) error {
	if strings.TrimSpace(video.Title) == "" {
		return errs.Errorf(errs.EINVALID, "Video title is required.")
	}
	return nil
}

// mediaRequired makes sure both media URLs are present.
func (vv *videoValidator) mediaRequired(video *domain.Video) error {
	if video.VideoFile == "" || video.Thumbnail == "" {
		return errs.Errorf(errs.EINVALID, "Video file and thumbnail are required.")
	}
	return nil
}

// videoFilterScope translates a domain.VideoFilter into WHERE clauses.
func videoFilterScope(filter domain.VideoFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.Query != "" {
			pattern := "%" + filter.Query + "%"
			db = db.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
		}
		if filter.OwnerID != nil {
			db = db.Where("owner_id = ?", *filter.OwnerID)
		}
		return db
	}
}

// ByID retrieves a single Video by ID, owner profile included.
func (vg *videoGorm) ByID(ctx context.Context, id int) (*domain.Video, error) {
	var video domain.Video
	err := vg.db.WithContext(ctx).
		Preload("Owner").
		First(&video, "id = ?", id).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "The video does not exist.")
		}
		return nil, err
	}
	return &video, nil
}

// View counts a view on the video and returns it like ByID.
func (vg *videoGorm) View(ctx context.Context, id int) (*domain.Video, error) {
	res := vg.db.WithContext(ctx).
		Model(&domain.Video{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errs.Errorf(errs.ENOTFOUND, "The video does not exist.")
	}
	return vg.ByID(ctx, id)
}

// Find matches videos against the filter, joins in the owner profile, sorts
// by the whitelisted sort key and slices out the requested page. It returns
// the page of videos plus the total match count.
func (vg *videoGorm) Find(ctx context.Context, filter domain.VideoFilter) ([]domain.Video, int, error) {
	page, limit := normalizePage(filter.Page, filter.Limit)

	var total int64
	err := vg.db.WithContext(ctx).
		Model(&domain.Video{}).
		Scopes(videoFilterScope(filter)).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var videos []domain.Video
	err = vg.db.WithContext(ctx).
		Scopes(videoFilterScope(filter)).
		Preload("Owner").
		Order(orderClause(filter.SortBy, filter.SortDesc, videoSortColumns)).
		Offset(pageOffset(page, limit)).
		Limit(limit).
		Find(&videos).Error
	if err != nil {
		return nil, 0, err
	}
	return videos, int(total), nil
}

// Create stores the data from the Video object in a new database record
// and preloads the owner profile for the response.
func (vg *videoGorm) Create(ctx context.Context, video *domain.Video) error {
	if err := vg.db.WithContext(ctx).Create(video).Error; err != nil {
		return err
	}
	return vg.db.WithContext(ctx).Preload("Owner").First(video, "id = ?", video.ID).Error
}

// Update applies the non-nil fields of upd to the video owned by actorID.
func (vg *videoGorm) Update(ctx context.Context, id, actorID int, upd domain.VideoUpdate) (*domain.Video, error) {
	video, err := vg.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if video.OwnerID != actorID {
		return nil, errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to edit this video.")
	}

	changes := map[string]interface{}{}
	if upd.Title != nil {
		changes["title"] = *upd.Title
	}
	if upd.Description != nil {
		changes["description"] = *upd.Description
	}
	if upd.VideoFile != nil {
		changes["video_file"] = *upd.VideoFile
	}
	if upd.Thumbnail != nil {
		changes["thumbnail"] = *upd.Thumbnail
	}
	if upd.Duration != nil {
		changes["duration"] = *upd.Duration
	}
	if len(changes) > 0 {
		err = vg.db.WithContext(ctx).
			Model(&domain.Video{}).
			Where("id = ?", id).
			Updates(changes).Error
		if err != nil {
			return nil, err
		}
	}
	return vg.ByID(ctx, id)
}

// Delete permanently deletes the video owned by actorID, along with its
// likes, its comments and the likes of those comments.
func (vg *videoGorm) Delete(ctx context.Context, id, actorID int) error {
	video, err := vg.ByID(ctx, id)
	if err != nil {
		return err
	}
	if video.OwnerID != actorID {
		return errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to delete this video.")
	}
	return vg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Association delete only cascades one level, so the likes of
		// the video's comments go first.
		commentIDs := tx.Model(&domain.Comment{}).Select("id").Where("video_id = ?", id)
		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&domain.Like{}).Error; err != nil {
			return err
		}
		return tx.Select("Comments", "Likes").Delete(video).Error
	})
}

// TogglePublish flips the publish flag of the video owned by actorID.
func (vg *videoGorm) TogglePublish(ctx context.Context, id, actorID int) (*domain.Video, error) {
	video, err := vg.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if video.OwnerID != actorID {
		return nil, errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to publish or unpublish this video.")
	}
	err = vg.db.WithContext(ctx).
		Model(&domain.Video{}).
		Where("id = ?", id).
		UpdateColumn("is_published", !video.IsPublished).Error
	if err != nil {
		return nil, err
	}
	return vg.ByID(ctx, id)
}
