package database

import (
	"context"

	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/rpupo63/blog-platform-backend/models"
	"gorm.io/gorm"
)

type CommentRepo struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) *CommentRepo {
	return &CommentRepo{db}
}

// FindByID returns a comment with its author
func (r *CommentRepo) FindByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, errs.NewDatabaseError("find", "comment", err)
	}
	return &comment, nil
}

// FindByPost returns a post's comments oldest first
func (r *CommentRepo) FindByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, errs.NewDatabaseError("list", "comments", err)
	}
	return comments, nil
}

func (r *CommentRepo) Add(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return errs.NewDatabaseError("create", "comment", err)
	}
	return nil
}

func (r *CommentRepo) UpdateText(ctx context.Context, id uint, text string) error {
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", id).
		Update("text", text).Error
	if err != nil {
		return errs.NewDatabaseError("update", "comment", err)
	}
	return nil
}

func (r *CommentRepo) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error; err != nil {
		return errs.NewDatabaseError("delete", "comment", err)
	}
	return nil
}

// CountByPosts returns comment counts keyed by post id. Posts without comments are absent.
func (r *CommentRepo) CountByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	counts, err := countByPost(ctx, r.db, &models.Comment{}, postIDs)
	if err != nil {
		return nil, errs.NewDatabaseError("count", "comments", err)
	}
	return counts, nil
}
