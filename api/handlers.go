package api

import (
	"time"

	"github.com/rpupo63/blog-platform-backend/auth"
	"github.com/rpupo63/blog-platform-backend/database"
	"github.com/rpupo63/blog-platform-backend/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(db database.Database, authService *auth.Service, media services.MediaHost, startupTime time.Time) *routeHandlers {
	return &routeHandlers{
		authHandler:     newAuthHandler(authService, media),
		userHandler:     newUserHandler(db.UserRepo()),
		blogPostHandler: newBlogPostHandler(db, media),
		commentHandler:  newCommentHandler(db.BlogPostRepo(), db.CommentRepo()),
		tagHandler:      newTagHandler(db.TagRepo()),
		healthHandler:   newHealthHandler(db, startupTime),
	}
}
