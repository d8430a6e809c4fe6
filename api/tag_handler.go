package api

import (
	"net/http"
	"strings"

	"github.com/rpupo63/blog-platform-backend/database"
	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/rpupo63/blog-platform-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type tagHandler struct {
	responder Responder
	logger    zerolog.Logger
	tagRepo   *database.TagRepo
}

func newTagHandler(tagRepo *database.TagRepo) tagHandler {
	logger := log.With().Str("handlerName", "tagHandler").Logger()

	return tagHandler{
		responder: NewResponder(logger),
		logger:    logger,
		tagRepo:   tagRepo,
	}
}

// addTag creates a tag. Staff and superusers only.
// @Summary Add tag
// @Tags Tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tag body tagRequest true "Tag name"
// @Success 201 {object} TagResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Not an admin"
// @Failure 409 {object} ErrorResponse "Tag already exists"
// @Router /tags/add [post]
func (h tagHandler) addTag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tagRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		tag := &models.Tag{Name: strings.TrimSpace(req.Name)}
		if tag.Name == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("name"))
			return
		}

		if err := h.tagRepo.Add(r.Context(), tag); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Str("tag", tag.Name).Msg("Tag added")
		h.responder.WriteJSONStatus(w, http.StatusCreated, newTagResponse(tag))
	}
}

// listTags
// @Summary List tags
// @Tags Tags
// @Produce json
// @Success 200 {array} TagResponse
// @Router /list-tags [get]
func (h tagHandler) listTags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := h.tagRepo.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		response := make([]TagResponse, 0, len(tags))
		for _, t := range tags {
			response = append(response, newTagResponse(t))
		}
		h.responder.WriteJSON(w, response)
	}
}
