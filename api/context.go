package api

import (
	"context"
	"errors"

	"github.com/rpupo63/blog-platform-backend/models"
)

type keyType string

const (
	userKey keyType = "user"
)

// ctxWithUser stores the authenticated user for the rest of the request
func ctxWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// ctxGetUser retrieves the authenticated user from the context
func ctxGetUser(ctx context.Context) (*models.User, error) {
	if ctxValue := ctx.Value(userKey); ctxValue == nil {
		return nil, errors.New("user not found in context")
	} else if user, ok := ctxValue.(*models.User); !ok || user == nil {
		return nil, errors.New("value is not of type `*models.User`")
	} else {
		return user, nil
	}
}
