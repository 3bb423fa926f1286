package main

import (
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vidtube/domain"
)

// DB provides the database connection.
type DB struct {
	// Object-relational mapping.
	Gorm *gorm.DB
	// Connection info string containing database name, user, port etc.
	ConnectionInfo string
}

// NewDB returns a new instance of DB.
func NewDB(connectionInfo string) *DB {
	return &DB{
		ConnectionInfo: connectionInfo,
	}
}

// Open opens a new database connection. It also configures query logging
// based on whether we're in development or in production.
func Open(db *DB, isProd bool) (err error) {
	if db.ConnectionInfo == "" {
		return errors.New("connectionInfo required")
	}
	logMode := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	if !isProd {
		logMode.Logger = logger.Default.LogMode(logger.Info)
	}
	db.Gorm, err = gorm.Open(postgres.Open(db.ConnectionInfo), logMode)
	if err != nil {
		return errors.Wrap(err, "open gorm postgres connection")
	}
	return nil
}

// AutoMigrate runs database migrations for all tables, then installs the
// composite unique indexes that make like toggling race-free: at most one
// like row per (actor, subject) pair, with NULL subject columns never
// conflicting across subject kinds.
func AutoMigrate(db *DB) error {
	err := db.Gorm.AutoMigrate(
		domain.User{},
		domain.Video{},
		domain.Comment{},
		domain.Tweet{},
		domain.Like{},
	)
	if err != nil {
		return errors.Wrap(err, "auto-migrate")
	}
	for _, stmt := range []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_like_video ON likes (liked_by, video_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_like_comment ON likes (liked_by, comment_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_like_tweet ON likes (liked_by, tweet_id)`,
	} {
		if err := db.Gorm.Exec(stmt).Error; err != nil {
			return errors.Wrap(err, "create like unique index")
		}
	}
	return nil
}

// DestructiveReset drops all tables and rebuilds them.
func DestructiveReset(db *DB) error {
	err := db.Gorm.Migrator().DropTable(
		domain.Like{},
		domain.Comment{},
		domain.Tweet{},
		domain.Video{},
		domain.User{},
	)
	if err != nil {
		return err
	}
	return AutoMigrate(db)
}

// Close closes the database connection.
func Close(db *DB) error {
	sqlDb, err := db.Gorm.DB()
	if err != nil {
		return err
	}
	return sqlDb.Close()
}
