package database

import (
	"context"

	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/rpupo63/blog-platform-backend/models"
	"gorm.io/gorm"
)

type Database struct {
	db              *gorm.DB
	userRepo        *UserRepo
	blogPostRepo    *BlogPostRepo
	tagRepo         *TagRepo
	likeRepo        *LikeRepo
	commentRepo     *CommentRepo
	failedLoginRepo *FailedLoginRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:              db,
		userRepo:        NewUserRepo(db),
		blogPostRepo:    NewBlogPostRepo(db),
		tagRepo:         NewTagRepo(db),
		likeRepo:        NewLikeRepo(db),
		commentRepo:     NewCommentRepo(db),
		failedLoginRepo: NewFailedLoginRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

func (d Database) BlogPostRepo() *BlogPostRepo {
	return d.blogPostRepo
}

func (d Database) TagRepo() *TagRepo {
	return d.tagRepo
}

func (d Database) LikeRepo() *LikeRepo {
	return d.likeRepo
}

func (d Database) CommentRepo() *CommentRepo {
	return d.commentRepo
}

func (d Database) FailedLoginRepo() *FailedLoginRepo {
	return d.failedLoginRepo
}

// Transaction runs fn against repositories bound to a single database transaction.
// Returning an error from fn rolls the transaction back.
func (d Database) Transaction(ctx context.Context, fn func(tx Database) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

func (d Database) Migrate(ctx context.Context) error {
	if err := models.Migrate(d.db.WithContext(ctx)); err != nil {
		return errs.NewDatabaseError("migrate", "schema", err)
	}
	return nil
}

func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return errs.NewDatabaseError("open", "connection", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return errs.NewDatabaseError("ping", "database", err)
	}
	return nil
}

func (d Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
