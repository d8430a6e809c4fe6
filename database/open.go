package database

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

const sqliteScheme = "sqlite://"

type Options struct {
	URL            string
	ReplicaURLs    []string
	PoolSize       int
	ConnMaxLife    time.Duration
	ConnectTimeout time.Duration
}

// Open connects to the primary database and registers any read replicas.
// URLs prefixed with sqlite:// open a local sqlite file, which is used for development and tests.
func Open(opts Options) (*gorm.DB, error) {
	gormLogger := logger.New(
		&log.Logger,
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(dialector(opts.URL), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if len(opts.ReplicaURLs) > 0 {
		replicas := make([]gorm.Dialector, 0, len(opts.ReplicaURLs))
		for _, url := range opts.ReplicaURLs {
			replicas = append(replicas, dialector(url))
		}
		resolver := dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})
		if opts.PoolSize > 0 {
			resolver = resolver.SetMaxOpenConns(opts.PoolSize)
		}
		if opts.ConnMaxLife > 0 {
			resolver = resolver.SetConnMaxLifetime(opts.ConnMaxLife)
		}
		if err := db.Use(resolver); err != nil {
			return nil, err
		}
		log.Info().Int("replicas", len(replicas)).Msg("Registered read replicas")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.PoolSize > 0 {
		sqlDB.SetMaxOpenConns(opts.PoolSize)
		idle := opts.PoolSize / 2
		if idle < 2 {
			idle = 2
		}
		sqlDB.SetMaxIdleConns(idle)
	}
	if opts.ConnMaxLife > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLife)
	}

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

func dialector(url string) gorm.Dialector {
	if strings.HasPrefix(url, sqliteScheme) {
		return sqlite.Open(strings.TrimPrefix(url, sqliteScheme))
	}
	return postgres.Open(url)
}
