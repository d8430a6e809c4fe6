package database

import (
	"context"

	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/rpupo63/blog-platform-backend/models"
	"gorm.io/gorm"
)

type BlogPostRepo struct {
	db *gorm.DB
}

func NewBlogPostRepo(db *gorm.DB) *BlogPostRepo {
	return &BlogPostRepo{db}
}

func (r *BlogPostRepo) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("User").Preload("Tags", func(db *gorm.DB) *gorm.DB {
		return db.Order("tags.name ASC")
	})
}

// FindAll returns blog posts newest first. A non-zero tagID keeps only posts carrying that tag.
func (r *BlogPostRepo) FindAll(ctx context.Context, tagID uint) ([]*models.BlogPost, error) {
	q := r.withRelations(ctx)
	if tagID != 0 {
		q = q.Where("id IN (?)", r.db.Table("blog_post_tags").Select("blog_post_id").Where("tag_id = ?", tagID))
	}

	var posts []*models.BlogPost
	if err := q.Order("created_at DESC, id DESC").Find(&posts).Error; err != nil {
		return nil, errs.NewDatabaseError("list", "blog posts", err)
	}
	return posts, nil
}

// FindByUser returns one author's posts newest first
func (r *BlogPostRepo) FindByUser(ctx context.Context, userID uint) ([]*models.BlogPost, error) {
	var posts []*models.BlogPost
	err := r.withRelations(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, errs.NewDatabaseError("list", "blog posts", err)
	}
	return posts, nil
}

// FindByID returns a blog post by its ID
func (r *BlogPostRepo) FindByID(ctx context.Context, id uint) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := r.withRelations(ctx).First(&post, id).Error; err != nil {
		return nil, errs.NewDatabaseError("find", "blog post", err)
	}
	return &post, nil
}

// Exists reports whether a post with the id is present
func (r *BlogPostRepo) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.BlogPost{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, errs.NewDatabaseError("find", "blog post", err)
	}
	return count > 0, nil
}

// Add inserts a new blog post and links its tags
func (r *BlogPostRepo) Add(ctx context.Context, post *models.BlogPost) error {
	err := r.db.WithContext(ctx).
		Omit("User", "Tags.*").
		Create(post).Error
	if err != nil {
		return errs.NewDatabaseError("create", "blog post", err)
	}
	return nil
}

// Update saves the post's own columns. A non-nil tags slice replaces the post's tags.
func (r *BlogPostRepo) Update(ctx context.Context, post *models.BlogPost, tags []models.Tag) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(post).Select("title", "content", "image_url", "updated_at").Updates(post).Error; err != nil {
			return err
		}
		if tags == nil {
			return nil
		}
		if err := tx.Model(post).Association("Tags").Replace(tags); err != nil {
			return err
		}
		post.Tags = tags
		return nil
	})
	if err != nil {
		return errs.NewDatabaseError("update", "blog post", err)
	}
	return nil
}

// Delete removes a blog post along with its likes, comments and tag links
func (r *BlogPostRepo) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM blog_post_tags WHERE blog_post_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.BlogPost{}, id).Error
	})
	if err != nil {
		return errs.NewDatabaseError("delete", "blog post", err)
	}
	return nil
}

// TopLiked returns up to limit posts ordered by like count, ties broken by insertion order.
func (r *BlogPostRepo) TopLiked(ctx context.Context, limit int) ([]*models.BlogPost, error) {
	return r.rankBy(ctx, "likes", limit)
}

// MostCommented returns up to limit posts ordered by comment count, ties broken by insertion order.
func (r *BlogPostRepo) MostCommented(ctx context.Context, limit int) ([]*models.BlogPost, error) {
	return r.rankBy(ctx, "comments", limit)
}

// table is always one of the constant names above
func (r *BlogPostRepo) rankBy(ctx context.Context, table string, limit int) ([]*models.BlogPost, error) {
	var ranked []postCount
	err := r.db.WithContext(ctx).
		Model(&models.BlogPost{}).
		Select("blog_posts.id AS post_id, COUNT(" + table + ".id) AS total").
		Joins("LEFT JOIN " + table + " ON " + table + ".post_id = blog_posts.id").
		Group("blog_posts.id").
		Order("total DESC, blog_posts.id ASC").
		Limit(limit).
		Scan(&ranked).Error
	if err != nil {
		return nil, errs.NewDatabaseError("rank", "blog posts", err)
	}
	if len(ranked) == 0 {
		return []*models.BlogPost{}, nil
	}

	ids := make([]uint, len(ranked))
	for i, row := range ranked {
		ids[i] = row.PostID
	}

	var posts []*models.BlogPost
	if err := r.withRelations(ctx).Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, errs.NewDatabaseError("list", "blog posts", err)
	}

	byID := make(map[uint]*models.BlogPost, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	ordered := make([]*models.BlogPost, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}
