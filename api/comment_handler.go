package api

import (
	"net/http"
	"strings"

	"github.com/rpupo63/blog-platform-backend/auth"
	"github.com/rpupo63/blog-platform-backend/database"
	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/rpupo63/blog-platform-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type commentHandler struct {
	responder   Responder
	logger      zerolog.Logger
	postRepo    *database.BlogPostRepo
	commentRepo *database.CommentRepo
}

func newCommentHandler(postRepo *database.BlogPostRepo, commentRepo *database.CommentRepo) commentHandler {
	logger := log.With().Str("handlerName", "commentHandler").Logger()

	return commentHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		postRepo:    postRepo,
		commentRepo: commentRepo,
	}
}

// createComment
// @Summary Comment on a blog post
// @Tags Comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param post_id path int true "Blog Post ID"
// @Param comment body commentRequest true "Comment text"
// @Success 201 {object} CommentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Blog post not found"
// @Router /blogs/{post_id}/comment [post]
func (h commentHandler) createComment() http.HandlerFunc {
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

		var req commentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		text := strings.TrimSpace(req.Text)
		if text == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("text"))
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

		comment := &models.Comment{PostID: postID, UserID: user.ID, Text: text}
		if err := h.commentRepo.Add(r.Context(), comment); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		comment.User = *user

		h.responder.WriteJSONStatus(w, http.StatusCreated, newCommentResponse(comment))
	}
}

// ownedComment loads a comment and checks that the caller wrote it
func (h commentHandler) ownedComment(r *http.Request) (*models.Comment, error) {
	user, err := ctxGetUser(r.Context())
	if err != nil {
		return nil, errs.NewMissingTokenError()
	}
	commentID, err := uintParam(r, "comment_id")
	if err != nil {
		return nil, err
	}

	comment, err := h.commentRepo.FindByID(r.Context(), commentID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwner(user, comment.UserID, "comment"); err != nil {
		return nil, err
	}
	return comment, nil
}

// updateComment
// @Summary Edit a comment
// @Description Only the comment's author may edit it.
// @Tags Comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param comment_id path int true "Comment ID"
// @Param comment body commentRequest true "New text"
// @Success 200 {object} CommentResponse
// @Failure 403 {object} ErrorResponse "Not the author"
// @Failure 404 {object} ErrorResponse "Comment not found"
// @Router /comments/{comment_id}/update [put]
func (h commentHandler) updateComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		comment, err := h.ownedComment(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req commentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		text := strings.TrimSpace(req.Text)
		if text == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("text"))
			return
		}

		if err := h.commentRepo.UpdateText(r.Context(), comment.ID, text); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		comment.Text = text

		h.responder.WriteJSON(w, newCommentResponse(comment))
	}
}

// deleteComment
// @Summary Delete a comment
// @Description Only the comment's author may delete it.
// @Tags Comments
// @Produce json
// @Security BearerAuth
// @Param comment_id path int true "Comment ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} ErrorResponse "Not the author"
// @Failure 404 {object} ErrorResponse "Comment not found"
// @Router /comments/{comment_id}/delete [delete]
func (h commentHandler) deleteComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		comment, err := h.ownedComment(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.commentRepo.Delete(r.Context(), comment.ID); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteMessage(w, http.StatusOK, "Comment deleted successfully.")
	}
}
