package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/inklet-app/inklet/backend/internal/common/constants"
)

var (
	ErrMissingRequiredEnv = errors.New("missing required environment variable")
	ErrInvalidJWTSecret   = errors.New("JWT_SECRET must be at least 32 bytes")
)

type BlogConfig struct {
	HTTPPort    string
	DatabaseURL string
	JWTSecret   string

	RequestTimeout time.Duration

	MediaUploadURL     string
	MediaDeleteURL     string
	MediaAPIKey        string
	MediaUploadTimeout time.Duration

	AccessTokenTTL          time.Duration
	RefreshTokenTTL         time.Duration
	MaxRefreshTokensPerUser int
}

func LoadBlogConfig() (BlogConfig, error) {
	jwtSecret, err := mustEnv("JWT_SECRET")
	if err != nil {
		return BlogConfig{}, err
	}

	if err := validateJWTSecret(jwtSecret); err != nil {
		return BlogConfig{}, err
	}

	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return BlogConfig{}, err
	}

	mediaUploadURL, err := mustEnv("MEDIA_UPLOAD_URL")
	if err != nil {
		return BlogConfig{}, err
	}

	return BlogConfig{
		HTTPPort:                getEnv("BLOG_HTTP_PORT", constants.DefaultBlogHTTPPort),
		DatabaseURL:             databaseURL,
		JWTSecret:               jwtSecret,
		RequestTimeout:          getDurationEnv("BLOG_REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		MediaUploadURL:          mediaUploadURL,
		MediaDeleteURL:          getEnv("MEDIA_DELETE_URL", ""),
		MediaAPIKey:             getEnv("MEDIA_API_KEY", ""),
		MediaUploadTimeout:      getDurationEnv("MEDIA_UPLOAD_TIMEOUT", constants.DefaultMediaUploadTimeout),
		AccessTokenTTL:          getDurationEnv("ACCESS_TOKEN_TTL", constants.DefaultAccessTokenTTL),
		RefreshTokenTTL:         getDurationEnv("REFRESH_TOKEN_TTL", constants.DefaultRefreshTokenTTL),
		MaxRefreshTokensPerUser: getIntEnv("MAX_REFRESH_TOKENS_PER_USER", constants.DefaultMaxRefreshTokensPerUser),
	}, nil
}

func validateJWTSecret(secret string) error {
	if len(secret) < constants.JWTSecretMinLength {
		return fmt.Errorf("%w: got %d bytes", ErrInvalidJWTSecret, len(secret))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
