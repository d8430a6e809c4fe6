package api

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes registers public routes and the routes that need a bearer token
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)

		r.Get("/health", handlers.healthHandler.health())

		// Account endpoints
		r.Post("/signup", handlers.authHandler.signup())
		r.Post("/login", handlers.authHandler.login())
		r.Post("/password-reset", handlers.authHandler.requestPasswordReset())
		r.Get("/password-reset-confirm/{uid}/{token}", handlers.authHandler.checkPasswordResetLink())
		r.Post("/password-reset-confirm/{uid}/{token}", handlers.authHandler.confirmPasswordReset())

		// Public read endpoints
		r.Get("/blogs-list", handlers.blogPostHandler.getAllBlogPosts())
		r.Get("/blogs-list/get-all-user", handlers.userHandler.getAllUsers())
		r.Get("/blogs-list/top-liked-posts", handlers.blogPostHandler.getTopLikedBlogPosts())
		r.Get("/blogs-list/most-commented-posts", handlers.blogPostHandler.getMostCommentedBlogPosts())
		r.Get("/blogs-list/{user_id}/user-posts", handlers.blogPostHandler.getUserBlogPosts())
		r.Get("/blogs-list/{post_id}", handlers.blogPostHandler.getBlogPost())
		r.Get("/list-tags", handlers.tagHandler.listTags())

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.authenticate)

			r.Post("/logout", handlers.authHandler.logout())
			r.Get("/me", handlers.authHandler.me())
			r.Post("/change-password", handlers.authHandler.changePassword())

			r.Post("/blogs-create", handlers.blogPostHandler.createBlogPost())
			r.Put("/blogs-list/{post_id}", handlers.blogPostHandler.updateBlogPost())
			r.Delete("/blogs-list/{post_id}", handlers.blogPostHandler.deleteBlogPost())
			r.Post("/blogs/{post_id}/like", handlers.blogPostHandler.likeBlogPost())
			r.Post("/blogs/{post_id}/comment", handlers.commentHandler.createComment())

			r.Put("/comments/{comment_id}/update", handlers.commentHandler.updateComment())
			r.Delete("/comments/{comment_id}/delete", handlers.commentHandler.deleteComment())

			r.With(authMiddleware.adminOnly).Post("/tags/add", handlers.tagHandler.addTag())
		})
	})
}
