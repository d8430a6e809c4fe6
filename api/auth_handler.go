package api

import (
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/blog-platform-backend/auth"
	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/rpupo63/blog-platform-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	auth      *auth.Service
	media     services.MediaHost
}

func newAuthHandler(authService *auth.Service, media services.MediaHost) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder: NewResponder(logger),
		logger:    logger,
		auth:      authService,
		media:     media,
	}
}

// signup registers a new user
// @Summary Sign up
// @Description Creates an active user. Accepts JSON or multipart form data with an optional profile_picture file.
// @Tags Auth
// @Accept json,mpfd
// @Produce json
// @Param user body signupRequest true "email, username, password and optional name"
// @Success 201 {object} SignupResponse
// @Failure 400 {object} ErrorResponse "Missing fields or weak password"
// @Failure 409 {object} ErrorResponse "Email already registered"
// @Failure 500 {object} ErrorResponse "Media upload failed"
// @Router /signup [post]
func (h authHandler) signup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		var picture *multipart.FileHeader

		if isMultipart(r) {
			if err := parseMultipart(w, r); err != nil {
				h.responder.WriteError(w, err)
				return
			}
			req = signupRequest{
				Email:    r.FormValue("email"),
				Username: r.FormValue("username"),
				Name:     r.FormValue("name"),
				Password: r.FormValue("password"),
			}
			if files := r.MultipartForm.File["profile_picture"]; len(files) > 0 {
				picture = files[0]
			}
			if err := validateStruct(&req); err != nil {
				h.responder.WriteError(w, err)
				return
			}
		} else if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if req.Email == "" || req.Username == "" || req.Password == "" {
			h.responder.WriteError(w, errs.BadRequest("All fields (username, email, password) are required."))
			return
		}
		if err := auth.ValidatePassword(req.Password); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var pictureURL *string
		if picture != nil {
			url, err := uploadFile(r, h.media, picture)
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			pictureURL = &url
		}

		user, err := h.auth.Signup(r.Context(), auth.SignupInput{
			Email:          req.Email,
			Username:       req.Username,
			Name:           req.Name,
			Password:       req.Password,
			ProfilePicture: pictureURL,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, SignupResponse{
			Success:        "User created successfully",
			ProfilePicture: user.ProfilePicture,
			User:           newUserResponse(user),
		})
	}
}

// login exchanges credentials for a bearer token
// @Summary Log in
// @Description Returns a bearer token. The cached token is reused while it is valid. Five consecutive failures send a password reset email.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "email and password"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse "Missing email or password"
// @Failure 401 {object} ErrorResponse "Invalid email or password"
// @Failure 403 {object} ErrorResponse "Too many failed attempts"
// @Router /login [post]
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		token, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, LoginResponse{
			Message:     "Login successful",
			AccessToken: token,
			TokenType:   "Bearer",
			User:        newUserResponse(user),
		})
	}
}

// logout clears the cached token
// @Summary Log out
// @Description Clears the cached token. A token that was already issued stays valid until it expires.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} ErrorResponse
// @Router /logout [post]
func (h authHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}

		if err := h.auth.Logout(r.Context(), user); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteMessage(w, http.StatusOK, "Logged out successfully.")
	}
}

// me returns the logged in user
// @Summary Current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MeResponse
// @Failure 401 {object} ErrorResponse
// @Router /me [get]
func (h authHandler) me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}

		h.responder.WriteJSON(w, MeResponse{
			UserResponse: newUserResponse(user),
			IsStaff:      user.IsStaff,
			IsSuperuser:  user.IsSuperuser,
			LastLogin:    user.LastLoginAt,
			CreatedAt:    user.CreatedAt,
		})
	}
}

// changePassword
// @Summary Change password
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param passwords body changePasswordRequest true "old and new password"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse "Wrong old password or weak new password"
// @Failure 401 {object} ErrorResponse
// @Router /change-password [post]
func (h authHandler) changePassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}

		var req changePasswordRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.auth.ChangePassword(r.Context(), user, req.OldPassword, req.NewPassword); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteMessage(w, http.StatusOK, "Password changed successfully.")
	}
}

// requestPasswordReset
// @Summary Request a password reset
// @Description Emails a reset link if an account uses this address. The response does not reveal whether one does.
// @Tags Auth
// @Accept json
// @Produce json
// @Param email body passwordResetRequest true "account email"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse "Email missing"
// @Failure 500 {object} ErrorResponse "Email delivery failed"
// @Router /password-reset [post]
func (h authHandler) requestPasswordReset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req passwordResetRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteMessage(w, http.StatusOK, "If an account exists for this email, a password reset link has been sent.")
	}
}

// checkPasswordResetLink
// @Summary Check a password reset link
// @Tags Auth
// @Produce json
// @Param uid path string true "base64 user id"
// @Param token path string true "reset token"
// @Success 200 {object} ResetLinkResponse
// @Failure 401 {object} ErrorResponse "Invalid or expired link"
// @Router /password-reset-confirm/{uid}/{token} [get]
func (h authHandler) checkPasswordResetLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := h.auth.CheckResetLink(r.Context(), chi.URLParam(r, "uid"), chi.URLParam(r, "token"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, ResetLinkResponse{
			Valid:   true,
			Message: "Token is valid. Submit a new password to complete the reset.",
			Email:   user.Email,
		})
	}
}

// confirmPasswordReset
// @Summary Set a new password from a reset link
// @Tags Auth
// @Accept json
// @Produce json
// @Param uid path string true "base64 user id"
// @Param token path string true "reset token"
// @Param password body passwordResetConfirmRequest true "new password"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse "Weak password"
// @Failure 401 {object} ErrorResponse "Invalid or expired link"
// @Router /password-reset-confirm/{uid}/{token} [post]
func (h authHandler) confirmPasswordReset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req passwordResetConfirmRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		err := h.auth.ConfirmPasswordReset(r.Context(), chi.URLParam(r, "uid"), chi.URLParam(r, "token"), req.NewPassword)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteMessage(w, http.StatusOK, "Password has been reset successfully.")
	}
}
