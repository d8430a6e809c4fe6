package api

import (
	"context"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/rpupo63/blog-platform-backend/auth"
	"github.com/rpupo63/blog-platform-backend/database"
	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/rpupo63/blog-platform-backend/models"
	"github.com/rpupo63/blog-platform-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const rankingLimit = 10

type blogPostHandler struct {
	responder   Responder
	logger      zerolog.Logger
	db          database.Database
	postRepo    *database.BlogPostRepo
	tagRepo     *database.TagRepo
	likeRepo    *database.LikeRepo
	commentRepo *database.CommentRepo
	media       services.MediaHost
}

func newBlogPostHandler(db database.Database, media services.MediaHost) blogPostHandler {
	logger := log.With().Str("handlerName", "blogPostHandler").Logger()

	return blogPostHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		db:          db,
		postRepo:    db.BlogPostRepo(),
		tagRepo:     db.TagRepo(),
		likeRepo:    db.LikeRepo(),
		commentRepo: db.CommentRepo(),
		media:       media,
	}
}

// counts loads like and comment counts for the posts concurrently
func (h blogPostHandler) counts(ctx context.Context, posts []*models.BlogPost) (likes, comments map[uint]int64, err error) {
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		likes, err = h.likeRepo.CountByPosts(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = h.commentRepo.CountByPosts(gctx, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return likes, comments, nil
}

func (h blogPostHandler) writePosts(w http.ResponseWriter, r *http.Request, posts []*models.BlogPost) {
	likes, comments, err := h.counts(r.Context(), posts)
	if err != nil {
		h.responder.WriteError(w, err)
		return
	}

	response := make([]BlogPostResponse, 0, len(posts))
	for _, p := range posts {
		response = append(response, newBlogPostResponse(p, likes[p.ID], comments[p.ID]))
	}
	h.responder.WriteJSON(w, response)
}

// createBlogPost creates a new blog post owned by the caller
// @Summary Create blog post
// @Description Accepts JSON, or multipart form data with an optional image file. Tags are referenced by name.
// @Tags Blog Posts
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param blogPost body blogPostRequest true "Blog post data"
// @Success 201 {object} BlogPostResponse
// @Failure 400 {object} ErrorResponse "Invalid blog post data or unknown tag"
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse "Error creating blog post or uploading image"
// @Router /blogs-create [post]
func (h blogPostHandler) createBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}

		var req blogPostRequest
		var image *multipart.FileHeader
		if isMultipart(r) {
			if err := parseMultipart(w, r); err != nil {
				h.responder.WriteError(w, err)
				return
			}
			req = blogPostRequest{
				Title:   strings.TrimSpace(r.FormValue("title")),
				Content: r.FormValue("content"),
				Tags:    formList(r, "tags"),
			}
			if files := r.MultipartForm.File["image"]; len(files) > 0 {
				image = files[0]
			}
			if err := validateStruct(&req); err != nil {
				h.responder.WriteError(w, err)
				return
			}
		} else if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		tags, err := h.tagRepo.FindByNames(r.Context(), req.Tags)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post := &models.BlogPost{
			UserID:  user.ID,
			Title:   req.Title,
			Content: req.Content,
			Tags:    tags,
		}
		if image != nil {
			url, err := uploadFile(r, h.media, image)
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			post.ImageURL = &url
		}

		if err := h.postRepo.Add(r.Context(), post); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		post.User = *user

		h.logger.Info().Uint("postId", post.ID).Uint("userId", user.ID).Msg("Blog post created")
		h.responder.WriteJSONStatus(w, http.StatusCreated, newBlogPostResponse(post, 0, 0))
	}
}

// getAllBlogPosts lists blog posts, newest first
// @Summary List blog posts
// @Tags Blog Posts
// @Produce json
// @Param tag_id query int false "Only posts with this tag"
// @Success 200 {array} BlogPostResponse
// @Failure 400 {object} ErrorResponse "Invalid tag_id"
// @Router /blogs-list [get]
func (h blogPostHandler) getAllBlogPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tagID, err := uintQuery(r, "tag_id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		posts, err := h.postRepo.FindAll(r.Context(), tagID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.writePosts(w, r, posts)
	}
}

// getUserBlogPosts lists one author's posts
// @Summary List a user's blog posts
// @Tags Blog Posts
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {array} BlogPostResponse
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /blogs-list/{user_id}/user-posts [get]
func (h blogPostHandler) getUserBlogPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uintParam(r, "user_id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if _, err := h.db.UserRepo().FindByID(r.Context(), userID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		posts, err := h.postRepo.FindByUser(r.Context(), userID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.writePosts(w, r, posts)
	}
}

// getTopLikedBlogPosts
// @Summary Top liked blog posts
// @Description The ten posts with the most likes. Ties keep insertion order.
// @Tags Blog Posts
// @Produce json
// @Success 200 {array} BlogPostResponse
// @Router /blogs-list/top-liked-posts [get]
func (h blogPostHandler) getTopLikedBlogPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := h.postRepo.TopLiked(r.Context(), rankingLimit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.writePosts(w, r, posts)
	}
}

// getMostCommentedBlogPosts
// @Summary Most commented blog posts
// @Description The ten posts with the most comments. Ties keep insertion order.
// @Tags Blog Posts
// @Produce json
// @Success 200 {array} BlogPostResponse
// @Router /blogs-list/most-commented-posts [get]
func (h blogPostHandler) getMostCommentedBlogPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := h.postRepo.MostCommented(r.Context(), rankingLimit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.writePosts(w, r, posts)
	}
}

// getBlogPost retrieves a blog post with its comments
// @Summary Get blog post
// @Tags Blog Posts
// @Produce json
// @Param post_id path int true "Blog Post ID"
// @Success 200 {object} BlogPostDetailResponse
// @Failure 400 {object} ErrorResponse "Invalid post_id"
// @Failure 404 {object} ErrorResponse "Blog post not found"
// @Router /blogs-list/{post_id} [get]
func (h blogPostHandler) getBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := uintParam(r, "post_id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var (
			post     *models.BlogPost
			comments []*models.Comment
			likes    map[uint]int64
		)
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			var err error
			post, err = h.postRepo.FindByID(ctx, postID)
			return err
		})
		g.Go(func() error {
			var err error
			comments, err = h.commentRepo.FindByPost(ctx, postID)
			return err
		})
		g.Go(func() error {
			var err error
			likes, err = h.likeRepo.CountByPosts(ctx, []uint{postID})
			return err
		})
		if err := g.Wait(); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		response := BlogPostDetailResponse{
			BlogPostResponse: newBlogPostResponse(post, likes[postID], int64(len(comments))),
			Comments:         make([]CommentResponse, 0, len(comments)),
		}
		for _, c := range comments {
			response.Comments = append(response.Comments, newCommentResponse(c))
		}
		h.responder.WriteJSON(w, response)
	}
}

// ownedPost loads a post and checks that the caller wrote it
func (h blogPostHandler) ownedPost(r *http.Request) (*models.BlogPost, error) {
	user, err := ctxGetUser(r.Context())
	if err != nil {
		return nil, errs.NewMissingTokenError()
	}
	postID, err := uintParam(r, "post_id")
	if err != nil {
		return nil, err
	}

	post, err := h.postRepo.FindByID(r.Context(), postID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwner(user, post.UserID, "blog post"); err != nil {
		return nil, err
	}
	return post, nil
}

// updateBlogPost lets the author change title, content or tags
// @Summary Update blog post
// @Tags Blog Posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param post_id path int true "Blog Post ID"
// @Param blogPost body blogPostUpdateRequest true "Fields to change"
// @Success 200 {object} BlogPostResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Not the author"
// @Failure 404 {object} ErrorResponse "Blog post not found"
// @Router /blogs-list/{post_id} [put]
func (h blogPostHandler) updateBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.ownedPost(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req blogPostUpdateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if req.Title != nil {
			post.Title = strings.TrimSpace(*req.Title)
		}
		if req.Content != nil {
			post.Content = *req.Content
		}

		var tags []models.Tag
		if req.Tags != nil {
			if tags, err = h.tagRepo.FindByNames(r.Context(), req.Tags); err != nil {
				h.responder.WriteError(w, err)
				return
			}
			if tags == nil {
				tags = []models.Tag{}
			}
		}

		if err := h.postRepo.Update(r.Context(), post, tags); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		likes, comments, err := h.counts(r.Context(), []*models.BlogPost{post})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, newBlogPostResponse(post, likes[post.ID], comments[post.ID]))
	}
}

// deleteBlogPost lets the author delete a post with its likes and comments
// @Summary Delete blog post
// @Tags Blog Posts
// @Produce json
// @Security BearerAuth
// @Param post_id path int true "Blog Post ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} ErrorResponse "Not the author"
// @Failure 404 {object} ErrorResponse "Blog post not found"
// @Router /blogs-list/{post_id} [delete]
func (h blogPostHandler) deleteBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.ownedPost(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.postRepo.Delete(r.Context(), post.ID); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteMessage(w, http.StatusOK, "Blog post deleted successfully.")
	}
}

// likeBlogPost toggles the caller's like
// @Summary Like or unlike a blog post
// @Description The first call likes the post (201), the next removes the like (200).
// @Tags Blog Posts
// @Produce json
// @Security BearerAuth
// @Param post_id path int true "Blog Post ID"
// @Success 200 {object} LikeResponse "Like removed!"
// @Success 201 {object} LikeResponse "Post liked!"
// @Failure 404 {object} ErrorResponse "Blog post not found"
// @Router /blogs/{post_id}/like [post]
func (h blogPostHandler) likeBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}
		postID, err := uintParam(r, "post_id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		exists, err := h.postRepo.Exists(r.Context(), postID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if !exists {
			h.responder.WriteError(w, errs.NewNotFound("blog post"))
			return
		}

		liked, err := h.likeRepo.Toggle(r.Context(), postID, user.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		counts, err := h.likeRepo.CountByPosts(r.Context(), []uint{postID})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if liked {
			h.responder.WriteJSONStatus(w, http.StatusCreated, LikeResponse{Message: "Post liked!", Liked: true, LikeCount: counts[postID]})
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusOK, LikeResponse{Message: "Like removed!", Liked: false, LikeCount: counts[postID]})
	}
}
