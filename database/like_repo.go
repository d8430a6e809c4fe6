package database

import (
	"context"

	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/rpupo63/blog-platform-backend/models"
	"gorm.io/gorm"
)

type LikeRepo struct {
	db *gorm.DB
}

func NewLikeRepo(db *gorm.DB) *LikeRepo {
	return &LikeRepo{db}
}

// Toggle removes the user's like on a post if one exists, otherwise adds it.
// It reports whether the post is liked afterwards.
func (r *LikeRepo) Toggle(ctx context.Context, postID, userID uint) (bool, error) {
	liked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		liked = true
		return tx.Create(&models.Like{PostID: postID, UserID: userID}).Error
	})
	if err != nil {
		return false, errs.NewDatabaseError("toggle", "like", err)
	}
	return liked, nil
}

// CountByPosts returns like counts keyed by post id. Posts without likes are absent.
func (r *LikeRepo) CountByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	counts, err := countByPost(ctx, r.db, &models.Like{}, postIDs)
	if err != nil {
		return nil, errs.NewDatabaseError("count", "likes", err)
	}
	return counts, nil
}

type postCount struct {
	PostID uint
	Total  int64
}

func countByPost(ctx context.Context, db *gorm.DB, model interface{}, postIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	var rows []postCount
	err := db.WithContext(ctx).
		Model(model).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.PostID] = row.Total
	}
	return counts, nil
}
