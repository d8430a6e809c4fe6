package auth

import (
	"encoding/base64"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/rpupo63/blog-platform-backend/models"
)

const resetPurpose = "password_reset"

type resetClaims struct {
	Purpose string `json:"pur"`
	jwt.RegisteredClaims
}

// ResetTokens generates and checks password reset tokens.
//
// The signing key mixes in the user's password hash and last login time, so a token stops
// verifying as soon as the password changes or the user logs in. That makes every token
// single use without storing it.
type ResetTokens struct {
	secret  string
	timeout time.Duration
	now     func() time.Time
}

func NewResetTokens(secret string, timeout time.Duration) *ResetTokens {
	return &ResetTokens{
		secret:  secret,
		timeout: timeout,
		now:     time.Now,
	}
}

func (rt *ResetTokens) Make(user *models.User) (string, error) {
	now := rt.now()
	claims := resetClaims{
		Purpose: resetPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(rt.timeout)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(rt.key(user))
	if err != nil {
		return "", errs.NewInternalErrorWithCause("failed to sign reset token", err)
	}
	return signed, nil
}

// Check verifies that token was made for user and is still usable.
func (rt *ResetTokens) Check(user *models.User, token string) error {
	claims := &resetClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return rt.key(user), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(rt.now),
	)
	if err != nil {
		return errs.NewInvalidOrExpiredTokenError()
	}

	if claims.Purpose != resetPurpose || claims.Subject != strconv.FormatUint(uint64(user.ID), 10) {
		return errs.NewInvalidOrExpiredTokenError()
	}
	return nil
}

func (rt *ResetTokens) key(user *models.User) []byte {
	lastLogin := ""
	if user.LastLoginAt != nil {
		lastLogin = strconv.FormatInt(user.LastLoginAt.UnixMicro(), 10)
	}
	return []byte(rt.secret + user.PasswordHash + lastLogin)
}

// EncodeUID renders a user id for the reset link.
func EncodeUID(id uint) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(uint64(id), 10)))
}

func DecodeUID(uidb64 string) (uint, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uidb64)
	if err != nil {
		return 0, errs.NewBase64DecodeError("uid", err)
	}
	id, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, errs.NewInvalidOrExpiredTokenError()
	}
	return uint(id), nil
}
