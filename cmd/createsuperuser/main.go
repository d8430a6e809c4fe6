package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-platform-backend/auth"
	"github.com/rpupo63/blog-platform-backend/config"
	"github.com/rpupo63/blog-platform-backend/database"
	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/rpupo63/blog-platform-backend/models"
)

const (
	roleSuperuser = "superuser"
	roleStaff     = "staff"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: createsuperuser <email> <username> <password> [role]")
		fmt.Println("Example: createsuperuser admin@example.com admin 'Secret1!'")
		fmt.Println("Role can be: superuser, staff (default: superuser)")
		os.Exit(1)
	}

	role := roleSuperuser
	if len(os.Args) > 4 {
		role = os.Args[4]
	}

	_ = godotenv.Load()
	settings := config.Load(config.New())

	gormDB, err := database.Open(database.Options{
		URL:            settings.DatabaseURL,
		PoolSize:       settings.PoolSize,
		ConnMaxLife:    settings.ConnMaxLife,
		ConnectTimeout: settings.ConnectTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	db := database.New(gormDB)
	defer db.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate schema")
	}

	user, err := createUser(ctx, db, os.Args[1], os.Args[2], os.Args[3], role)
	if err != nil {
		if errs.IsAlreadyExists(err) {
			fmt.Printf("User with email %s already exists\n", models.NormalizeEmail(os.Args[1]))
		} else {
			fmt.Println(err.Error())
		}
		os.Exit(1)
	}

	fmt.Printf("%s created successfully\n", role)
	fmt.Printf("Email: %s\n", user.Email)
	fmt.Printf("Username: %s\n", *user.Username)
	fmt.Printf("ID: %d\n", user.ID)
}

// createUser adds an active staff account; superusers also get the superuser flag.
func createUser(ctx context.Context, db database.Database, email, username, password, role string) (*models.User, error) {
	if role != roleSuperuser && role != roleStaff {
		return nil, errs.NewInvalidFieldError("role", fmt.Sprintf("%q must be 'superuser' or 'staff'", role))
	}
	if email == "" {
		return nil, errs.NewMissingRequiredFieldError("email")
	}
	if username == "" {
		return nil, errs.NewMissingRequiredFieldError("username")
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        models.NormalizeEmail(email),
		Username:     &username,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      true,
		IsSuperuser:  role == roleSuperuser,
	}
	if err := db.UserRepo().Add(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
