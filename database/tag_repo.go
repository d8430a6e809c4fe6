package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/rpupo63/blog-platform-backend/models"
	"gorm.io/gorm"
)

type TagRepo struct {
	db *gorm.DB
}

func NewTagRepo(db *gorm.DB) *TagRepo {
	return &TagRepo{db}
}

// FindAll returns all tags ordered by name
func (r *TagRepo) FindAll(ctx context.Context) ([]*models.Tag, error) {
	var tags []*models.Tag
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, errs.NewDatabaseError("list", "tags", err)
	}
	return tags, nil
}

// FindByNames resolves tag names to tags. Unknown names are a 400 naming the first one missing.
func (r *TagRepo) FindByNames(ctx context.Context, names []string) ([]models.Tag, error) {
	if len(names) == 0 {
		return nil, nil
	}

	var tags []models.Tag
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, errs.NewDatabaseError("find", "tags", err)
	}

	found := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		found[t.Name] = struct{}{}
	}
	for _, name := range names {
		if _, ok := found[name]; !ok {
			return nil, errs.NewInvalidFieldError("tags", fmt.Sprintf("tag %q does not exist", name))
		}
	}
	return tags, nil
}

// Add inserts a new tag. Names are unique.
func (r *TagRepo) Add(ctx context.Context, tag *models.Tag) error {
	tag.Name = strings.TrimSpace(tag.Name)
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		return errs.NewDatabaseError("create", "tag", err)
	}
	return nil
}
