package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rpupo63/blog-platform-backend/database"
	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/rpupo63/blog-platform-backend/models"
	"github.com/rpupo63/blog-platform-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// MaxFailedAttempts is the number of consecutive failed logins that triggers a reset email.
const MaxFailedAttempts = 5

// Service owns the account lifecycle: signup, login with lockout, logout and password resets.
type Service struct {
	db            database.Database
	tokens        *TokenIssuer
	resets        *ResetTokens
	mailer        services.Mailer
	resetLinkBase string
	now           func() time.Time
	logger        zerolog.Logger
}

func NewService(db database.Database, tokens *TokenIssuer, resets *ResetTokens, mailer services.Mailer, resetLinkBase string) *Service {
	return &Service{
		db:            db,
		tokens:        tokens,
		resets:        resets,
		mailer:        mailer,
		resetLinkBase: strings.TrimRight(resetLinkBase, "/"),
		now:           time.Now,
		logger:        log.With().Str("service", "auth").Logger(),
	}
}

type SignupInput struct {
	Email          string
	Username       string
	Name           string
	Password       string
	ProfilePicture *string
}

// Signup validates the password and creates an active user.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	email := models.NormalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)
	if email == "" || username == "" || in.Password == "" {
		return nil, errs.BadRequest("All fields (username, email, password) are required.")
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:          email,
		Username:       &username,
		PasswordHash:   hash,
		ProfilePicture: in.ProfilePicture,
		IsActive:       true,
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		user.Name = &name
	}

	if err := s.db.UserRepo().Add(ctx, user); err != nil {
		if errs.IsAlreadyExists(err) {
			return nil, errs.NewConflictError("A user with this email already exists.")
		}
		return nil, err
	}

	s.logger.Info().Uint("userId", user.ID).Msg("User signed up")
	return user, nil
}

// Login checks credentials and returns a bearer token, reusing the cached one while it is still valid.
//
// Wrong passwords count towards the lockout threshold. Reaching it sends one reset email and
// every further failure is answered with TooManyAttempts. A correct password always succeeds
// and clears the counter.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", nil, errs.BadRequest("Email and password are required.")
	}

	user, err := s.db.UserRepo().FindByEmail(ctx, email)
	if err != nil {
		if errs.IsNotFound(err) {
			return "", nil, errs.NewInvalidCredentialsError()
		}
		return "", nil, err
	}
	if !user.IsActive {
		return "", nil, errs.NewInvalidCredentialsError()
	}

	if !CheckPassword(user.PasswordHash, password) {
		return "", nil, s.recordFailure(ctx, user)
	}

	var token string
	err = s.db.Transaction(ctx, func(tx database.Database) error {
		locked, err := tx.UserRepo().LockByID(ctx, user.ID)
		if err != nil {
			return err
		}
		if err := tx.FailedLoginRepo().Clear(ctx, locked.ID); err != nil {
			return err
		}

		token = s.reusableToken(locked)
		if token == "" {
			if token, _, err = s.tokens.Issue(locked.ID); err != nil {
				return err
			}
		}

		now := s.now()
		if err := tx.UserRepo().SetAccessToken(ctx, locked.ID, &token, &now); err != nil {
			return err
		}
		locked.AccessToken = &token
		locked.LastLoginAt = &now
		user = locked
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	s.logger.Info().Uint("userId", user.ID).Msg("User logged in")
	return token, user, nil
}

func (s *Service) reusableToken(user *models.User) string {
	if user.AccessToken == nil || *user.AccessToken == "" {
		return ""
	}
	id, err := s.tokens.Parse(*user.AccessToken)
	if err != nil || id != user.ID {
		return ""
	}
	return *user.AccessToken
}

func (s *Service) recordFailure(ctx context.Context, user *models.User) error {
	var attempts int
	err := s.db.Transaction(ctx, func(tx database.Database) error {
		var err error
		attempts, err = tx.FailedLoginRepo().RecordFailure(ctx, user.ID, s.now())
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Warn().Uint("userId", user.ID).Int("attempts", attempts).Msg("Failed login")

	if attempts == MaxFailedAttempts {
		if err := s.sendResetEmail(ctx, user, services.LockoutEmail); err != nil {
			s.logger.Error().Err(err).Uint("userId", user.ID).Msg("Failed to send lockout email")
		}
	}
	if attempts >= MaxFailedAttempts {
		return errs.NewTooManyAttemptsError()
	}
	return errs.NewInvalidCredentialsError()
}

// Authenticate resolves a bearer token to the active user it was issued to.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	user, err := s.db.UserRepo().FindByID(ctx, id)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.NewInvalidTokenError()
		}
		return nil, err
	}
	if !user.CanAuthenticate() {
		return nil, errs.NewInvalidTokenError()
	}
	return user, nil
}

// Logout drops the cached token. Tokens already handed out stay valid until they expire.
func (s *Service) Logout(ctx context.Context, user *models.User) error {
	return s.db.UserRepo().SetAccessToken(ctx, user.ID, nil, nil)
}

// RequestPasswordReset emails a reset link to the account with this address, if there is one.
// The result is the same whether or not an account matched.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return errs.NewMissingRequiredFieldError("email")
	}

	users, err := s.db.UserRepo().FindAllByEmail(ctx, email)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		s.logger.Info().Msg("Password reset requested for unknown email")
		return nil
	}

	for _, user := range users {
		if err := s.sendResetEmail(ctx, user, services.PasswordResetEmail); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) sendResetEmail(ctx context.Context, user *models.User, render func(link string) string) error {
	token, err := s.resets.Make(user)
	if err != nil {
		return err
	}
	link := fmt.Sprintf("%s/password-reset-confirm/%s/%s/", s.resetLinkBase, EncodeUID(user.ID), token)
	return s.mailer.SendEmail(ctx, services.PasswordResetSubject, render(link), []string{user.Email})
}

// CheckResetLink returns the user a reset link belongs to if the link is still usable.
func (s *Service) CheckResetLink(ctx context.Context, uidb64, token string) (*models.User, error) {
	id, err := DecodeUID(uidb64)
	if err != nil {
		return nil, errs.NewInvalidOrExpiredTokenError()
	}

	user, err := s.db.UserRepo().FindByID(ctx, id)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.NewInvalidOrExpiredTokenError()
		}
		return nil, err
	}

	if err := s.resets.Check(user, token); err != nil {
		return nil, err
	}
	return user, nil
}

// ConfirmPasswordReset sets a new password through a reset link. The link stops working afterwards.
func (s *Service) ConfirmPasswordReset(ctx context.Context, uidb64, token, newPassword string) error {
	if newPassword == "" {
		return errs.NewMissingRequiredFieldError("new_password")
	}

	user, err := s.CheckResetLink(ctx, uidb64, token)
	if err != nil {
		return err
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	if err := s.setPassword(ctx, user.ID, newPassword); err != nil {
		return err
	}

	s.logger.Info().Uint("userId", user.ID).Msg("Password reset")
	return nil
}

// ChangePassword replaces the password of a logged in user after checking the old one.
func (s *Service) ChangePassword(ctx context.Context, user *models.User, oldPassword, newPassword string) error {
	if oldPassword == "" {
		return errs.NewMissingRequiredFieldError("old_password")
	}
	if newPassword == "" {
		return errs.NewMissingRequiredFieldError("new_password")
	}
	if !CheckPassword(user.PasswordHash, oldPassword) {
		return errs.NewInvalidFieldError("old_password", "Old password is incorrect.")
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	return s.setPassword(ctx, user.ID, newPassword)
}

// setPassword also clears the cached token and any failed login count.
func (s *Service) setPassword(ctx context.Context, userID uint, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	return s.db.Transaction(ctx, func(tx database.Database) error {
		if err := tx.UserRepo().SetPasswordHash(ctx, userID, hash); err != nil {
			return err
		}
		return tx.FailedLoginRepo().Clear(ctx, userID)
	})
}
