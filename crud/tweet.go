package crud

import (
	"context"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"vidtube/domain"
	"vidtube/errs"
)

// maxTweetLength caps tweet content.
const maxTweetLength = 280

// TweetService manages Tweets.
// It implements the domain.TweetService interface.
type TweetService struct {
	tweetValidator
}

// tweetValidator runs validations on incoming Tweet data.
// On success, it passes the data on to tweetGorm.
// Otherwise, it returns the error of the validation that has failed.
type tweetValidator struct {
	tweetGorm
}

// tweetGorm runs CRUD operations on the database using incoming Tweet data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type tweetGorm struct {
	db *gorm.DB
}

// NewTweetService returns an instance of TweetService.
func NewTweetService(db *gorm.DB) *TweetService {
	return &TweetService{
		tweetValidator{
			tweetGorm{
				db: db,
			},
		},
	}
}

// Ensure the TweetService struct properly implements the domain.TweetService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.TweetService = &TweetService{}

// Create runs validations needed for creating new Tweet database records.
func (tv *tweetValidator) Create(ctx context.Context, tweet *domain.Tweet) error {
	err := runTweetValFns(tweet,
		tv.ownerIdValid,
		tv.contentMinLength,
		tv.contentMaxLength,
	)
	if err != nil {
		return err
	}
	return tv.tweetGorm.Create(ctx, tweet)
}

// Update validates the new content before handing the write down.
func (tv *tweetValidator) Update(ctx context.Context, id, actorID int, content string) (*domain.Tweet, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errs.Errorf(errs.EINVALID, "Tweet content must not be empty.")
	}
	if utf8.RuneCountInString(content) > maxTweetLength {
		return nil, errs.Errorf(errs.EINVALID, "Tweet content max length is %d characters.", maxTweetLength)
	}
	return tv.tweetGorm.Update(ctx, id, actorID, content)
}

// runTweetValFns runs any number of functions of type tweetValFn on the passed in Tweet object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runTweetValFns(tweet *domain.Tweet, fns ...tweetValFn) error {
	for _, fn := range fns {
		if err := fn(tweet); err != nil {
			return err
		}
	}
	return nil
}

// A tweetValFn is any function that takes in a pointer to a domain.Tweet object and returns an error.
type tweetValFn func(tweet *domain.Tweet) error

// ownerIdValid ensures the ownerId is not empty.
func (tv *tweetValidator) ownerIdValid(tweet *domain.Tweet) error {
	if tweet.OwnerID <= 0 {
		return errs.Errorf(errs.EINVALID, "Owner ID is required.")
	}
	return nil
}

// contentMinLength makes sure the tweet content is not blank.
func (tv *tweetValidator) contentMinLength(tweet *domain.Tweet) error {
	if strings.TrimSpace(tweet.Content) == "" {
		return errs.Errorf(errs.EINVALID, "Tweet content must not be empty.")
	}
	return nil
}

// contentMaxLength makes sure the tweet content does not exceed the maximum length.
func (tv *tweetValidator) contentMaxLength(tweet *domain.Tweet) error {
	if utf8.RuneCountInString(tweet.Content) > maxTweetLength {
		return errs.Errorf(errs.EINVALID, "Tweet content max length is %d characters.", maxTweetLength)
	}
	return nil
}

// ByUser retrieves one page of a user's tweets, owner profile included,
// newest first. It returns the page plus the user's total tweet count.
func (tg *tweetGorm) ByUser(ctx context.Context, filter domain.TweetFilter) ([]domain.Tweet, int, error) {
	page, limit := normalizePage(filter.Page, filter.Limit)

	var total int64
	err := tg.db.WithContext(ctx).
		Model(&domain.Tweet{}).
		Where("owner_id = ?", filter.OwnerID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var tweets []domain.Tweet
	err = tg.db.WithContext(ctx).
		Where("owner_id = ?", filter.OwnerID).
		Preload("Owner").
		Order("created_at desc, id desc").
		Offset(pageOffset(page, limit)).
		Limit(limit).
		Find(&tweets).Error
	if err != nil {
		return nil, 0, err
	}
	return tweets, int(total), nil
}

// Create stores the data from the Tweet object in a new database record
// and preloads the owner profile for the response.
func (tg *tweetGorm) Create(ctx context.Context, tweet *domain.Tweet) error {
	if err := tg.db.WithContext(ctx).Create(tweet).Error; err != nil {
		return err
	}
	return tg.db.WithContext(ctx).Preload("Owner").First(tweet, "id = ?", tweet.ID).Error
}

// Update replaces the content of the tweet owned by actorID.
func (tg *tweetGorm) Update(ctx context.Context, id, actorID int, content string) (*domain.Tweet, error) {
	tweet, err := tg.byID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tweet.OwnerID != actorID {
		return nil, errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to edit this tweet.")
	}
	err = tg.db.WithContext(ctx).
		Model(&domain.Tweet{}).
		Where("id = ?", id).
		UpdateColumn("content", content).Error
	if err != nil {
		return nil, err
	}
	return tg.byID(ctx, id)
}

// Delete permanently deletes the tweet owned by actorID, along with its likes.
func (tg *tweetGorm) Delete(ctx context.Context, id, actorID int) error {
	tweet, err := tg.byID(ctx, id)
	if err != nil {
		return err
	}
	if tweet.OwnerID != actorID {
		return errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to delete this tweet.")
	}
	return tg.db.WithContext(ctx).
		Select("Likes").
		Delete(tweet).Error
}

// byID retrieves a single Tweet by ID, owner profile included.
func (tg *tweetGorm) byID(ctx context.Context, id int) (*domain.Tweet, error) {
	var tweet domain.Tweet
	err := tg.db.WithContext(ctx).
		Preload("Owner").
		First(&tweet, "id = ?", id).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "The tweet does not exist.")
		}
		return nil, err
	}
	return &tweet, nil
}
