package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rpupo63/blog-platform-backend/auth"
	"github.com/rpupo63/blog-platform-backend/database"
	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T) database.Database {
	t.Helper()
	gdb, err := database.Open(database.Options{URL: "sqlite://" + filepath.Join(t.TempDir(), "admin.db") + "?_foreign_keys=1"})
	require.NoError(t, err)

	db := database.New(gdb)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCreateUserRoles(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	super, err := createUser(ctx, db, " Root@Example.com ", "root", "Secret1!", roleSuperuser)
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", super.Email)
	assert.True(t, super.IsActive)
	assert.True(t, super.IsStaff)
	assert.True(t, super.IsSuperuser)

	staff, err := createUser(ctx, db, "editor@example.com", "editor", "Secret1!", roleStaff)
	require.NoError(t, err)
	assert.True(t, staff.IsStaff)
	assert.False(t, staff.IsSuperuser)

	stored, err := db.UserRepo().FindByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.True(t, stored.IsAdmin())
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "Secret1!"))
}

func TestCreateUserRejectsBadInput(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	_, err := createUser(ctx, db, "a@example.com", "a", "Secret1!", "owner")
	assert.True(t, errs.IsInvalidFieldError(err))

	_, err = createUser(ctx, db, "a@example.com", "a", "weak", roleStaff)
	assert.True(t, errs.IsWeakPasswordError(err))

	_, err = createUser(ctx, db, "", "a", "Secret1!", roleStaff)
	assert.True(t, errs.IsMissingRequiredFieldError(err))

	_, err = createUser(ctx, db, "a@example.com", "a", "Secret1!", roleStaff)
	require.NoError(t, err)
	_, err = createUser(ctx, db, "A@example.com", "a2", "Secret1!", roleStaff)
	assert.True(t, errs.IsAlreadyExists(err))

	users, err := db.UserRepo().FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
