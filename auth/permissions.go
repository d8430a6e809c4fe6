package auth

import (
	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/rpupo63/blog-platform-backend/models"
)

// RequireAdmin lets staff and superusers through.
func RequireAdmin(user *models.User) error {
	if !user.IsAdmin() {
		return errs.NewInsufficientRoleError("staff")
	}
	return nil
}

// RequireOwner passes only for the user that wrote the resource.
func RequireOwner(user *models.User, ownerID uint, entity string) error {
	if user == nil || user.ID != ownerID {
		return errs.NewNotOwnerError(entity)
	}
	return nil
}
