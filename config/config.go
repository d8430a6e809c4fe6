package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func New() map[string]string {
	environ := os.Environ()
	envAsMap := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry != "" {
			key, value := split(entry)
			envAsMap[key] = value
		}
	}
	return envAsMap
}

// assumes entry is not the empty string
func split(entry string) (key, value string) {
	parts := strings.SplitN(entry, "=", 2)
	if len(parts) < 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func GetString(config map[string]string, key string, defaultValue string) string {
	if config == nil {
		return defaultValue
	}

	if val, ok := config[key]; ok && val != "" {
		return val
	}
	return defaultValue
}

func GetInt(config map[string]string, key string, defaultValue int) int {
	if config == nil {
		return defaultValue
	}

	s, ok := config[key]
	if !ok {
		return defaultValue
	}

	asInt, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}

	return asInt
}

func GetBool(config map[string]string, key string, defaultValue bool) bool {
	s := GetString(config, key, "")
	if s == "" {
		return defaultValue
	}

	asBool, err := strconv.ParseBool(s)
	if err != nil {
		return defaultValue
	}
	return asBool
}

// GetDuration accepts Go duration strings ("15m", "72h") or a bare number of seconds.
func GetDuration(config map[string]string, key string, defaultValue time.Duration) time.Duration {
	s := GetString(config, key, "")
	if s == "" {
		return defaultValue
	}

	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// GetList splits a comma-separated value, dropping empty entries.
func GetList(config map[string]string, key string) []string {
	raw := GetString(config, key, "")
	if raw == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Settings is the typed view of the environment used to wire the server.
type Settings struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	DatabaseURL    string
	ReplicaURLs    []string
	AutoMigrate    bool
	PoolSize       int
	ConnMaxLife    time.Duration
	ConnectTimeout time.Duration

	SecretKey            string
	TokenIssuer          string
	AccessTokenTTL       time.Duration
	PasswordResetTimeout time.Duration
	ResetLinkBaseURL     string

	ResendAPIKey    string
	ResendFromEmail string

	MediaBucket        string
	MediaRegion        string
	MediaEndpoint      string
	MediaPublicBaseURL string
	MediaKeyPrefix     string

	AcceptedOrigins []string
	LogLevel        string
}

// Load builds Settings from an env map produced by New (optionally merged with SSM values).
func Load(c map[string]string) Settings {
	return Settings{
		Port:         GetString(c, "PORT", "8080"),
		ReadTimeout:  time.Duration(GetInt(c, "READ_TIMEOUT_SECONDS", 180)) * time.Second,
		WriteTimeout: time.Duration(GetInt(c, "WRITE_TIMEOUT_SECONDS", 180)) * time.Second,
		IdleTimeout:  time.Duration(GetInt(c, "IDLE_TIMEOUT_SECONDS", 180)) * time.Second,

		DatabaseURL:    GetString(c, "DATABASE_URL", defaultDatabaseURL(c)),
		ReplicaURLs:    GetList(c, "DB_REPLICA_URLS"),
		AutoMigrate:    GetBool(c, "AUTO_MIGRATE", true),
		PoolSize:       GetInt(c, "DB_POOL_SIZE", 25),
		ConnMaxLife:    GetDuration(c, "DB_CONN_MAX_LIFETIME", 5*time.Minute),
		ConnectTimeout: GetDuration(c, "DB_CONNECT_TIMEOUT", 10*time.Second),

		SecretKey:            GetString(c, "SECRET_KEY", ""),
		TokenIssuer:          GetString(c, "TOKEN_ISSUER", "blog-platform"),
		AccessTokenTTL:       GetDuration(c, "ACCESS_TOKEN_TTL", 24*time.Hour),
		PasswordResetTimeout: GetDuration(c, "PASSWORD_RESET_TIMEOUT", 72*time.Hour),
		ResetLinkBaseURL:     GetString(c, "RESET_LINK_BASE_URL", "http://localhost:8080"),

		ResendAPIKey:    GetString(c, "RESEND_API_KEY", ""),
		ResendFromEmail: GetString(c, "RESEND_FROM_EMAIL", ""),

		MediaBucket:        GetString(c, "MEDIA_BUCKET", ""),
		MediaRegion:        GetString(c, "MEDIA_REGION", "us-east-1"),
		MediaEndpoint:      GetString(c, "MEDIA_ENDPOINT", ""),
		MediaPublicBaseURL: GetString(c, "MEDIA_PUBLIC_BASE_URL", ""),
		MediaKeyPrefix:     GetString(c, "MEDIA_KEY_PREFIX", "uploads"),

		AcceptedOrigins: GetList(c, "ACCEPTED_ORIGINS"),
		LogLevel:        GetString(c, "LOG_LEVEL", "info"),
	}
}

// Validate reports settings the server cannot start without.
func (s Settings) Validate() error {
	if s.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY is required")
	}
	if len(s.SecretKey) < 32 {
		return fmt.Errorf("SECRET_KEY must be at least 32 characters")
	}
	if s.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL or DB_HOST/DB_USER/DB_NAME is required")
	}
	return nil
}

func defaultDatabaseURL(c map[string]string) string {
	host := GetString(c, "DB_HOST", "")
	if host == "" {
		return ""
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host,
		GetString(c, "DB_USER", "postgres"),
		GetString(c, "DB_PASSWORD", ""),
		GetString(c, "DB_NAME", "postgres"),
		GetString(c, "DB_PORT", "5432"),
		GetString(c, "DB_SSLMODE", "disable"),
	)
}
