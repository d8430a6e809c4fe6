package api

import (
	"net/http"

	"github.com/rpupo63/blog-platform-backend/database"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type userHandler struct {
	responder Responder
	logger    zerolog.Logger
	userRepo  *database.UserRepo
}

func newUserHandler(userRepo *database.UserRepo) userHandler {
	logger := log.With().Str("handlerName", "userHandler").Logger()

	return userHandler{
		responder: NewResponder(logger),
		logger:    logger,
		userRepo:  userRepo,
	}
}

// getAllUsers lists every user that has not been deleted
// @Summary List users
// @Tags Users
// @Produce json
// @Success 200 {array} UserResponse
// @Router /blogs-list/get-all-user [get]
func (h userHandler) getAllUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := h.userRepo.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		response := make([]UserResponse, 0, len(users))
		for _, u := range users {
			response = append(response, newUserResponse(u))
		}
		h.responder.WriteJSON(w, response)
	}
}
