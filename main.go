package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-platform-backend/api"
	"github.com/rpupo63/blog-platform-backend/auth"
	"github.com/rpupo63/blog-platform-backend/config"
	"github.com/rpupo63/blog-platform-backend/database"
	"github.com/rpupo63/blog-platform-backend/models"
	"github.com/rpupo63/blog-platform-backend/services"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Info().Msg("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("No .env file loaded")
	}

	env := config.New()
	if prefix := config.GetString(env, "SSM_PARAMETER_PATH", ""); prefix != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		store, err := config.NewParameterStore(ctx, config.GetString(env, "AWS_REGION", "us-east-1"))
		if err == nil {
			err = config.MergeParameters(ctx, store, prefix, env)
		}
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("Error loading SSM parameters")
		}
	}

	settings := config.Load(env)

	level, err := zerolog.ParseLevel(strings.ToLower(settings.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if err := settings.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	db, err := database.Open(database.Options{
		URL:            settings.DatabaseURL,
		ReplicaURLs:    settings.ReplicaURLs,
		PoolSize:       settings.PoolSize,
		ConnMaxLife:    settings.ConnMaxLife,
		ConnectTimeout: settings.ConnectTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	// If generating models, run generation and exit
	if config.GetBool(env, "GENERATE_MODELS", false) {
		log.Info().Msg("Generating models and query helpers...")
		if err := models.GenerateModels(db); err != nil {
			log.Fatal().Err(err).Msg("Error generating models")
		}
		return
	}

	// If generating column mismatch report, run report and exit
	if config.GetBool(env, "GENERATE_COLUMN_REPORT", false) {
		log.Info().Msg("Generating column mismatch report...")
		if err := models.GenerateColumnMismatchReportStandalone(db); err != nil {
			log.Fatal().Err(err).Msg("Error generating column report")
		}
		return
	}

	currentDB := database.New(db)
	defer currentDB.Close()

	if settings.AutoMigrate {
		if err := currentDB.Migrate(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("Error migrating database")
		}
	}

	mailer := newMailer(settings)

	media, err := newMediaHost(settings)
	if err != nil {
		log.Fatal().Err(err).Msg("Error configuring media host")
	}

	authService := auth.NewService(currentDB,
		auth.NewTokenIssuer(settings.SecretKey, settings.TokenIssuer, settings.AccessTokenTTL),
		auth.NewResetTokens(settings.SecretKey, settings.PasswordResetTimeout),
		mailer,
		settings.ResetLinkBaseURL,
	)

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(settings, currentDB, authService, media)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

// newMailer sends through Resend when it is configured and logs emails otherwise.
func newMailer(settings config.Settings) services.Mailer {
	if settings.ResendAPIKey == "" {
		log.Warn().Msg("RESEND_API_KEY not set, emails will only be logged")
		return services.LogMailer{}
	}

	mailer, err := services.NewResendMailer(settings.ResendAPIKey, settings.ResendFromEmail)
	if err != nil {
		log.Warn().Err(err).Msg("Resend is misconfigured, emails will only be logged")
		return services.LogMailer{}
	}
	return mailer
}

// newMediaHost returns nil when no bucket is configured; uploads then fail with 503.
func newMediaHost(settings config.Settings) (services.MediaHost, error) {
	if settings.MediaBucket == "" {
		log.Warn().Msg("MEDIA_BUCKET not set, image uploads are disabled")
		return nil, nil
	}

	cfg := services.S3MediaConfig{
		Bucket:        settings.MediaBucket,
		Region:        settings.MediaRegion,
		Endpoint:      settings.MediaEndpoint,
		PublicBaseURL: settings.MediaPublicBaseURL,
		KeyPrefix:     settings.MediaKeyPrefix,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := services.NewS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return services.NewS3MediaHost(client, cfg)
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
