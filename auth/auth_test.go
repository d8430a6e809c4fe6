package auth

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/rpupo63/blog-platform-backend/database"
	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/rpupo63/blog-platform-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-0123456789abcdef0123"

type sentEmail struct {
	subject string
	body    string
	to      []string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (f *fakeMailer) SendEmail(_ context.Context, subject, body string, recipients []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEmail{subject: subject, body: body, to: recipients})
	return f.err
}

func (f *fakeMailer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeMailer) last() sentEmail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

var linkPattern = regexp.MustCompile(`password-reset-confirm/([^/]+)/([^/]+)/`)

func linkParts(t *testing.T, body string) (string, string) {
	t.Helper()
	m := linkPattern.FindStringSubmatch(body)
	require.Len(t, m, 3, body)
	return m[1], m[2]
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestService(t *testing.T) (*Service, *fakeMailer, *clock) {
	t.Helper()
	gdb, err := database.Open(database.Options{URL: "sqlite://" + filepath.Join(t.TempDir(), "auth.db") + "?_foreign_keys=1&_txlock=immediate"})
	require.NoError(t, err)
	db := database.New(gdb)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() { _ = db.Close() })

	c := &clock{t: time.Now()}
	tokens := NewTokenIssuer(testSecret, "blog-test", time.Hour)
	tokens.now = c.now
	resets := NewResetTokens(testSecret, 72*time.Hour)
	resets.now = c.now

	mailer := &fakeMailer{}
	svc := NewService(db, tokens, resets, mailer, "https://blog.example/")
	svc.now = c.now
	return svc, mailer, c
}

func signup(t *testing.T, svc *Service, email, password string) *models.User {
	t.Helper()
	u, err := svc.Signup(context.Background(), SignupInput{Email: email, Username: "a", Password: password})
	require.NoError(t, err)
	return u
}

func TestValidatePasswordRuleOrder(t *testing.T) {
	tests := []struct {
		password string
		reason   string
	}{
		{"Ab1!", "Password must be at least 6 characters long."},
		{"abcd1!23", "Password must contain at least one uppercase letter."},
		{"ABCD1!23", "Password must contain at least one lowercase letter."},
		{"Abcdef!!", "Password must contain at least one digit."},
		{"Abcd1234", "Password must contain at least one special character."},
		{"abc", "Password must be at least 6 characters long."},
		{"Abcd1!23", ""},
		{`Abcd1"23`, ""},
		{"Abcd!١٢", ""},
		{"Abcd!२x", ""},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errs.IsWeakPasswordError(err))

			var apiErr *errs.ApiErr
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, 400, apiErr.StatusCode)
			assert.Equal(t, tt.reason, apiErr.Details)
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Abcd1!23")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "Abcd1!23"))
	assert.False(t, CheckPassword(hash, "abcd1!23"))
}

func TestTokenIssuer(t *testing.T) {
	c := &clock{t: time.Now()}
	ti := NewTokenIssuer(testSecret, "blog-test", time.Hour)
	ti.now = c.now

	token, expiresAt, err := ti.Issue(42)
	require.NoError(t, err)
	assert.WithinDuration(t, c.t.Add(time.Hour), expiresAt, time.Second)

	id, err := ti.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	other := NewTokenIssuer("another-secret-0123456789abcdef0123", "blog-test", time.Hour)
	_, err = other.Parse(token)
	assert.True(t, errs.IsInvalidTokenError(err))

	_, err = ti.Parse(token + "x")
	assert.True(t, errs.IsInvalidTokenError(err))

	_, err = ti.Parse("")
	assert.True(t, errs.IsMissingTokenError(err))

	c.t = c.t.Add(2 * time.Hour)
	_, err = ti.Parse(token)
	assert.True(t, errs.IsInvalidTokenError(err))
}

func TestResetTokens(t *testing.T) {
	c := &clock{t: time.Now()}
	rt := NewResetTokens(testSecret, 72*time.Hour)
	rt.now = c.now

	user := &models.User{ID: 7, PasswordHash: "hash-1"}
	token, err := rt.Make(user)
	require.NoError(t, err)
	require.NoError(t, rt.Check(user, token))

	other := &models.User{ID: 8, PasswordHash: "hash-1"}
	assert.True(t, errs.IsInvalidOrExpiredTokenError(rt.Check(other, token)))

	changed := *user
	changed.PasswordHash = "hash-2"
	assert.True(t, errs.IsInvalidOrExpiredTokenError(rt.Check(&changed, token)))

	loggedIn := *user
	now := c.t
	loggedIn.LastLoginAt = &now
	assert.True(t, errs.IsInvalidOrExpiredTokenError(rt.Check(&loggedIn, token)))

	c.t = c.t.Add(73 * time.Hour)
	assert.True(t, errs.IsInvalidOrExpiredTokenError(rt.Check(user, token)))
}

func TestUIDEncoding(t *testing.T) {
	uid := EncodeUID(123)
	id, err := DecodeUID(uid)
	require.NoError(t, err)
	assert.Equal(t, uint(123), id)

	_, err = DecodeUID("***")
	assert.True(t, errs.IsBase64DecodeError(err))

	_, err = DecodeUID(EncodeUID(0))
	assert.Error(t, err)
}

func TestSignup(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	u := signup(t, svc, "A@X.com", "Abcd1!23")
	assert.Equal(t, "a@x.com", u.Email)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "Abcd1!23", u.PasswordHash)

	_, err := svc.Signup(ctx, SignupInput{Email: "a@x.com", Username: "b", Password: "Abcd1!23"})
	var apiErr *errs.ApiErr
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 409, apiErr.StatusCode)

	_, err = svc.Signup(ctx, SignupInput{Email: "b@x.com", Password: "Abcd1!23"})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Equal(t, "All fields (username, email, password) are required.", apiErr.Message())

	_, err = svc.Signup(ctx, SignupInput{Email: "b@x.com", Username: "b", Password: "weak"})
	assert.True(t, errs.IsWeakPasswordError(err))
}

func TestLoginReusesCachedToken(t *testing.T) {
	svc, _, c := newTestService(t)
	ctx := context.Background()
	u := signup(t, svc, "a@x.com", "Abcd1!23")

	first, user, err := svc.Login(ctx, "a@x.com", "Abcd1!23")
	require.NoError(t, err)
	assert.Equal(t, u.ID, user.ID)
	require.NotNil(t, user.LastLoginAt)

	second, _, err := svc.Login(ctx, "A@x.com", "Abcd1!23")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	authed, err := svc.Authenticate(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, u.ID, authed.ID)

	c.t = c.t.Add(2 * time.Hour)
	third, _, err := svc.Login(ctx, "a@x.com", "Abcd1!23")
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}

func TestLogoutKeepsIssuedTokenValid(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	signup(t, svc, "a@x.com", "Abcd1!23")

	token, user, err := svc.Login(ctx, "a@x.com", "Abcd1!23")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, user))

	_, err = svc.Authenticate(ctx, token)
	assert.NoError(t, err)

	next, _, err := svc.Login(ctx, "a@x.com", "Abcd1!23")
	require.NoError(t, err)
	assert.NotEqual(t, token, next)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, mailer, _ := newTestService(t)

	_, _, err := svc.Login(context.Background(), "nobody@x.com", "Abcd1!23")
	assert.True(t, errs.IsInvalidCredentialsError(err))
	assert.Zero(t, mailer.count())
}

func TestLoginLockout(t *testing.T) {
	svc, mailer, _ := newTestService(t)
	ctx := context.Background()
	u := signup(t, svc, "a@x.com", "Abcd1!23")

	for i := 1; i < MaxFailedAttempts; i++ {
		_, _, err := svc.Login(ctx, "a@x.com", "wrong")
		assert.True(t, errs.IsInvalidCredentialsError(err), "attempt %d", i)
	}
	assert.Zero(t, mailer.count())

	_, _, err := svc.Login(ctx, "a@x.com", "wrong")
	assert.True(t, errs.IsTooManyAttemptsError(err))
	require.Equal(t, 1, mailer.count())
	assert.Equal(t, []string{"a@x.com"}, mailer.last().to)

	_, _, err = svc.Login(ctx, "a@x.com", "wrong")
	assert.True(t, errs.IsTooManyAttemptsError(err))
	assert.Equal(t, 1, mailer.count())

	uid, token := linkParts(t, mailer.last().body)
	_, err = svc.CheckResetLink(ctx, uid, token)
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "a@x.com", "Abcd1!23")
	require.NoError(t, err)

	count, err := svc.db.FailedLoginRepo().Count(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// logging in changes the reset key, so the lockout link is spent
	_, err = svc.CheckResetLink(ctx, uid, token)
	assert.True(t, errs.IsInvalidOrExpiredTokenError(err))
}

func TestLockoutEmailFailureStillLocksOut(t *testing.T) {
	svc, mailer, _ := newTestService(t)
	mailer.err = errors.New("smtp down")
	ctx := context.Background()
	signup(t, svc, "a@x.com", "Abcd1!23")

	var err error
	for i := 0; i < MaxFailedAttempts; i++ {
		_, _, err = svc.Login(ctx, "a@x.com", "wrong")
	}
	assert.True(t, errs.IsTooManyAttemptsError(err))
	assert.Equal(t, 1, mailer.count())
}

func TestConcurrentFailuresAreAllCounted(t *testing.T) {
	svc, mailer, _ := newTestService(t)
	ctx := context.Background()
	u := signup(t, svc, "a@x.com", "Abcd1!23")

	var wg sync.WaitGroup
	for i := 0; i < MaxFailedAttempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = svc.Login(ctx, "a@x.com", "wrong")
		}()
	}
	wg.Wait()

	count, err := svc.db.FailedLoginRepo().Count(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, MaxFailedAttempts, count)
	assert.Equal(t, 1, mailer.count())
}

func TestPasswordResetFlow(t *testing.T) {
	svc, mailer, _ := newTestService(t)
	ctx := context.Background()
	signup(t, svc, "a@x.com", "Abcd1!23")

	require.NoError(t, svc.RequestPasswordReset(ctx, "nobody@x.com"))
	assert.Zero(t, mailer.count())

	assert.True(t, errs.IsMissingRequiredFieldError(svc.RequestPasswordReset(ctx, " ")))

	require.NoError(t, svc.RequestPasswordReset(ctx, "A@X.COM"))
	require.Equal(t, 1, mailer.count())
	assert.Contains(t, mailer.last().body, "https://blog.example/password-reset-confirm/")

	uid, token := linkParts(t, mailer.last().body)

	err := svc.ConfirmPasswordReset(ctx, uid, token, "weak")
	assert.True(t, errs.IsWeakPasswordError(err))

	require.NoError(t, svc.ConfirmPasswordReset(ctx, uid, token, "Newpass1!"))

	_, _, err = svc.Login(ctx, "a@x.com", "Abcd1!23")
	assert.True(t, errs.IsInvalidCredentialsError(err))
	_, _, err = svc.Login(ctx, "a@x.com", "Newpass1!")
	require.NoError(t, err)

	err = svc.ConfirmPasswordReset(ctx, uid, token, "Another1!")
	assert.True(t, errs.IsInvalidOrExpiredTokenError(err))
}

func TestCheckResetLinkRejectsGarbage(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CheckResetLink(ctx, "not-base64!", "token")
	assert.True(t, errs.IsInvalidOrExpiredTokenError(err))

	_, err = svc.CheckResetLink(ctx, EncodeUID(999), "token")
	assert.True(t, errs.IsInvalidOrExpiredTokenError(err))
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	signup(t, svc, "a@x.com", "Abcd1!23")
	_, user, err := svc.Login(ctx, "a@x.com", "Abcd1!23")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user, "nope", "Newpass1!")
	assert.True(t, errs.IsInvalidFieldError(err))

	err = svc.ChangePassword(ctx, user, "Abcd1!23", "short")
	assert.True(t, errs.IsWeakPasswordError(err))

	require.NoError(t, svc.ChangePassword(ctx, user, "Abcd1!23", "Newpass1!"))
	_, _, err = svc.Login(ctx, "a@x.com", "Newpass1!")
	assert.NoError(t, err)
}

func TestRequireAdmin(t *testing.T) {
	assert.NoError(t, RequireAdmin(&models.User{IsStaff: true}))
	assert.NoError(t, RequireAdmin(&models.User{IsSuperuser: true}))

	err := RequireAdmin(&models.User{})
	require.Error(t, err)
	assert.True(t, errs.IsInsufficientRoleError(err))

	assert.True(t, errs.IsInsufficientRoleError(RequireAdmin(nil)))
}

func TestRequireOwner(t *testing.T) {
	author := &models.User{ID: 7}
	assert.NoError(t, RequireOwner(author, 7, "comment"))

	err := RequireOwner(&models.User{ID: 8}, 7, "comment")
	require.Error(t, err)
	assert.True(t, errs.IsNotOwnerError(err))

	var apiErr *errs.ApiErr
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.StatusCode)
	assert.Equal(t, "Only the author can modify this comment", apiErr.Details)

	assert.True(t, errs.IsNotOwnerError(RequireOwner(nil, 7, "comment")))
}
