package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/rpupo63/blog-platform-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T) Database {
	t.Helper()
	db, err := Open(Options{URL: sqliteScheme + filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=1"})
	require.NoError(t, err)

	d := New(db)
	require.NoError(t, d.Migrate(context.Background()))
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func addUser(t *testing.T, d Database, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "hash", IsActive: true}
	require.NoError(t, d.UserRepo().Add(context.Background(), u))
	return u
}

func addPost(t *testing.T, d Database, author *models.User, title string, tags ...models.Tag) *models.BlogPost {
	t.Helper()
	p := &models.BlogPost{UserID: author.ID, Title: title, Content: "body", Tags: tags}
	require.NoError(t, d.BlogPostRepo().Add(context.Background(), p))
	return p
}

func TestUserRepoEmailIsUniqueAndCaseInsensitive(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()

	u := addUser(t, d, "Alice@Example.com")
	assert.Equal(t, "alice@example.com", u.Email)

	err := d.UserRepo().Add(ctx, &models.User{Email: "alice@example.COM", PasswordHash: "x", IsActive: true})
	require.Error(t, err)
	assert.True(t, errs.IsAlreadyExists(err))

	found, err := d.UserRepo().FindByEmail(ctx, "  ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	matches, err := d.UserRepo().FindAllByEmail(ctx, "alice@EXAMPLE.com")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestUserRepoSoftDeleteHidesUser(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()
	u := addUser(t, d, "gone@example.com")

	require.NoError(t, d.UserRepo().SoftDelete(ctx, u.ID))

	_, err := d.UserRepo().FindByID(ctx, u.ID)
	assert.True(t, errs.IsNotFound(err))
	_, err = d.UserRepo().FindByEmail(ctx, "gone@example.com")
	assert.True(t, errs.IsNotFound(err))

	users, err := d.UserRepo().FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserRepoAccessToken(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()
	u := addUser(t, d, "tok@example.com")

	token := "abc"
	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, d.UserRepo().SetAccessToken(ctx, u.ID, &token, &now))

	got, err := d.UserRepo().FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AccessToken)
	assert.Equal(t, "abc", *got.AccessToken)
	require.NotNil(t, got.LastLoginAt)

	require.NoError(t, d.UserRepo().SetPasswordHash(ctx, u.ID, "new-hash"))
	got, err = d.UserRepo().FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AccessToken)
	assert.Equal(t, "new-hash", got.PasswordHash)
}

func TestFailedLoginRepoCountsAndClears(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()
	u := addUser(t, d, "fail@example.com")
	repo := d.FailedLoginRepo()

	count, err := repo.Count(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	for want := 1; want <= 3; want++ {
		got, err := repo.RecordFailure(ctx, u.ID, time.Now())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	var rows int64
	require.NoError(t, d.db.Model(&models.FailedLoginAttempt{}).Where("user_id = ?", u.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	require.NoError(t, repo.Clear(ctx, u.ID))
	count, err = repo.Count(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	got, err := repo.RecordFailure(ctx, u.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestTransactionRollsBack(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()
	u := addUser(t, d, "tx@example.com")

	boom := errors.New("boom")
	err := d.Transaction(ctx, func(tx Database) error {
		if _, err := tx.FailedLoginRepo().RecordFailure(ctx, u.ID, time.Now()); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	count, err := d.FailedLoginRepo().Count(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestLikeToggleNeverDuplicates(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()
	u := addUser(t, d, "liker@example.com")
	p := addPost(t, d, u, "post")

	for i, want := range []bool{true, false, true} {
		liked, err := d.LikeRepo().Toggle(ctx, p.ID, u.ID)
		require.NoError(t, err, i)
		assert.Equal(t, want, liked, i)
	}

	counts, err := d.LikeRepo().CountByPosts(ctx, []uint{p.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[p.ID])
}

func TestLikeUniquePerPostAndUser(t *testing.T) {
	d := newTestDatabase(t)
	u := addUser(t, d, "dup@example.com")
	p := addPost(t, d, u, "post")

	require.NoError(t, d.db.Create(&models.Like{PostID: p.ID, UserID: u.ID}).Error)
	err := d.db.Create(&models.Like{PostID: p.ID, UserID: u.ID}).Error
	assert.Error(t, err)
}

func TestBlogPostTagsAndFilter(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()
	u := addUser(t, d, "author@example.com")

	golang := &models.Tag{Name: "go"}
	rust := &models.Tag{Name: "rust"}
	require.NoError(t, d.TagRepo().Add(ctx, golang))
	require.NoError(t, d.TagRepo().Add(ctx, rust))
	assert.True(t, errs.IsAlreadyExists(d.TagRepo().Add(ctx, &models.Tag{Name: "go"})))

	first := addPost(t, d, u, "first", *golang)
	addPost(t, d, u, "second", *rust)

	all, err := d.BlogPostRepo().FindAll(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	tagged, err := d.BlogPostRepo().FindAll(ctx, golang.ID)
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "first", tagged[0].Title)
	assert.Equal(t, "author@example.com", tagged[0].User.Email)
	require.Len(t, tagged[0].Tags, 1)

	first.Title = "renamed"
	require.NoError(t, d.BlogPostRepo().Update(ctx, first, []models.Tag{*rust}))
	reloaded, err := d.BlogPostRepo().FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", reloaded.Title)
	require.Len(t, reloaded.Tags, 1)
	assert.Equal(t, "rust", reloaded.Tags[0].Name)

	found, err := d.TagRepo().FindByNames(ctx, []string{"rust", "go", "go"})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	_, err = d.TagRepo().FindByNames(ctx, []string{"go", "zig"})
	assert.True(t, errs.IsInvalidFieldError(err))
}

func TestBlogPostDeleteRemovesLikesAndComments(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()
	u := addUser(t, d, "del@example.com")
	p := addPost(t, d, u, "doomed")

	_, err := d.LikeRepo().Toggle(ctx, p.ID, u.ID)
	require.NoError(t, err)
	require.NoError(t, d.CommentRepo().Add(ctx, &models.Comment{PostID: p.ID, UserID: u.ID, Text: "hi"}))

	require.NoError(t, d.BlogPostRepo().Delete(ctx, p.ID))

	_, err = d.BlogPostRepo().FindByID(ctx, p.ID)
	assert.True(t, errs.IsNotFound(err))
	comments, err := d.CommentRepo().FindByPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestPostRowDeleteCascadesInDatabase(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()
	u := addUser(t, d, "cascade@example.com")
	p := addPost(t, d, u, "raw delete")

	_, err := d.LikeRepo().Toggle(ctx, p.ID, u.ID)
	require.NoError(t, err)
	require.NoError(t, d.CommentRepo().Add(ctx, &models.Comment{PostID: p.ID, UserID: u.ID, Text: "hi"}))

	require.NoError(t, d.db.Exec("DELETE FROM blog_posts WHERE id = ?", p.ID).Error)

	var likes, comments int64
	require.NoError(t, d.db.Model(&models.Like{}).Where("post_id = ?", p.ID).Count(&likes).Error)
	require.NoError(t, d.db.Model(&models.Comment{}).Where("post_id = ?", p.ID).Count(&comments).Error)
	assert.Zero(t, likes)
	assert.Zero(t, comments)
}

func TestTopLikedOrderingAndLimit(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()

	users := make([]*models.User, 3)
	for i := range users {
		users[i] = addUser(t, d, fmt.Sprintf("u%d@example.com", i))
	}
	posts := make([]*models.BlogPost, 12)
	for i := range posts {
		posts[i] = addPost(t, d, users[0], fmt.Sprintf("post %d", i))
	}

	like := func(p *models.BlogPost, u *models.User) {
		_, err := d.LikeRepo().Toggle(ctx, p.ID, u.ID)
		require.NoError(t, err)
	}
	like(posts[5], users[0])
	like(posts[5], users[1])
	like(posts[2], users[0])
	like(posts[2], users[1])
	like(posts[9], users[2])
	like(posts[5], users[2])

	top, err := d.BlogPostRepo().TopLiked(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 10)

	assert.Equal(t, posts[5].ID, top[0].ID)
	assert.Equal(t, posts[2].ID, top[1].ID)
	assert.Equal(t, posts[9].ID, top[2].ID)
	// remaining posts have no likes and keep insertion order
	assert.Equal(t, posts[0].ID, top[3].ID)
	assert.Equal(t, posts[1].ID, top[4].ID)

	counts, err := d.LikeRepo().CountByPosts(ctx, []uint{top[0].ID, top[1].ID, top[3].ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[top[0].ID])
	assert.Equal(t, int64(2), counts[top[1].ID])
	assert.Zero(t, counts[top[3].ID])
}

func TestMostCommented(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()
	u := addUser(t, d, "c@example.com")
	a := addPost(t, d, u, "a")
	b := addPost(t, d, u, "b")

	for i := 0; i < 2; i++ {
		require.NoError(t, d.CommentRepo().Add(ctx, &models.Comment{PostID: b.ID, UserID: u.ID, Text: "x"}))
	}

	ranked, err := d.BlogPostRepo().MostCommented(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, b.ID, ranked[0].ID)
	assert.Equal(t, a.ID, ranked[1].ID)
}

func TestCommentUpdateAndDelete(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()
	u := addUser(t, d, "cm@example.com")
	p := addPost(t, d, u, "p")

	c := &models.Comment{PostID: p.ID, UserID: u.ID, Text: "first"}
	require.NoError(t, d.CommentRepo().Add(ctx, c))
	require.NoError(t, d.CommentRepo().UpdateText(ctx, c.ID, "edited"))

	got, err := d.CommentRepo().FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Text)
	assert.Equal(t, u.ID, got.User.ID)

	require.NoError(t, d.CommentRepo().Delete(ctx, c.ID))
	_, err = d.CommentRepo().FindByID(ctx, c.ID)
	assert.True(t, errs.IsNotFound(err))
}
