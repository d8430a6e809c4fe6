package database

import (
	"context"
	"time"

	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/rpupo63/blog-platform-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FailedLoginRepo struct {
	db *gorm.DB
}

func NewFailedLoginRepo(db *gorm.DB) *FailedLoginRepo {
	return &FailedLoginRepo{db}
}

// RecordFailure increments the user's consecutive failure counter and returns the new count.
// The increment is a single upsert so concurrent failures for the same user are never lost.
func (r *FailedLoginRepo) RecordFailure(ctx context.Context, userID uint, at time.Time) (int, error) {
	attempt := models.FailedLoginAttempt{
		UserID:        userID,
		Attempts:      1,
		LastAttemptAt: at,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"attempts":        gorm.Expr("failed_login_attempts.attempts + 1"),
			"last_attempt_at": at,
		}),
	}).Create(&attempt).Error
	if err != nil {
		return 0, errs.NewDatabaseError("record", "failed login", err)
	}

	var current models.FailedLoginAttempt
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&current).Error; err != nil {
		return 0, errs.NewDatabaseError("find", "failed login", err)
	}
	return current.Attempts, nil
}

// Count returns 0 when the user has no failures on record.
func (r *FailedLoginRepo) Count(ctx context.Context, userID uint) (int, error) {
	var current models.FailedLoginAttempt
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&current).Error
	if err != nil {
		return 0, errs.NewDatabaseError("find", "failed login", err)
	}
	return current.Attempts, nil
}

// Clear deletes the failure row, returning the user to the clear state.
func (r *FailedLoginRepo) Clear(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.FailedLoginAttempt{}).Error
	if err != nil {
		return errs.NewDatabaseError("clear", "failed logins", err)
	}
	return nil
}
