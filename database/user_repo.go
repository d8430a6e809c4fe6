package database

import (
	"context"
	"time"

	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/rpupo63/blog-platform-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db}
}

// FindAll returns every user that has not been soft-deleted
func (r *UserRepo) FindAll(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, errs.NewDatabaseError("list", "users", err)
	}
	return users, nil
}

// FindByID returns a user that has not been soft-deleted
func (r *UserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		First(&user, id).Error
	if err != nil {
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	return &user, nil
}

// LockByID reloads a user and holds its row lock until the surrounding transaction ends.
func (r *UserRepo) LockByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, id).Error
	if err != nil {
		return nil, errs.NewDatabaseError("lock", "user", err)
	}
	return &user, nil
}

// FindByEmail matches the normalized address of a user that has not been soft-deleted
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ? AND is_deleted = ?", models.NormalizeEmail(email), false).
		First(&user).Error
	if err != nil {
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	return &user, nil
}

// FindAllByEmail is the reset-request lookup. Emails are stored lower-cased, so at most one row matches.
func (r *UserRepo) FindAllByEmail(ctx context.Context, email string) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ? AND is_deleted = ? AND is_active = ?", models.NormalizeEmail(email), false, true).
		Find(&users).Error
	if err != nil {
		return nil, errs.NewDatabaseError("find", "users", err)
	}
	return users, nil
}

// Add inserts a new user. A duplicate email surfaces as a 409.
func (r *UserRepo) Add(ctx context.Context, user *models.User) error {
	user.Email = models.NormalizeEmail(user.Email)
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return errs.NewDatabaseError("create", "user", err)
	}
	return nil
}

func (r *UserRepo) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return errs.NewDatabaseError("update", "user", err)
	}
	return nil
}

// SetAccessToken stores the cached bearer token. A nil token clears it.
func (r *UserRepo) SetAccessToken(ctx context.Context, id uint, token *string, lastLogin *time.Time) error {
	updates := map[string]interface{}{"access_token": token}
	if lastLogin != nil {
		updates["last_login_at"] = *lastLogin
	}
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(updates).Error
	if err != nil {
		return errs.NewDatabaseError("update", "user token", err)
	}
	return nil
}

// SetPasswordHash replaces the password and drops the cached token.
func (r *UserRepo) SetPasswordHash(ctx context.Context, id uint, hash string) error {
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_hash": hash,
			"access_token":  nil,
		}).Error
	if err != nil {
		return errs.NewDatabaseError("update", "user password", err)
	}
	return nil
}

// SoftDelete hides a user from authentication and listings without removing their content.
func (r *UserRepo) SoftDelete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_deleted":   true,
			"access_token": nil,
		}).Error
	if err != nil {
		return errs.NewDatabaseError("delete", "user", err)
	}
	return nil
}
