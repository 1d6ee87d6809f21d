package constants

import "time"

const (
	UsernameMinLength  = 3
	UsernameMaxLength  = 32
	PasswordMinLength  = 8
	PasswordMaxLength  = 72
	JWTSecretMinLength = 32
	RefreshTokenSize   = 32

	TitleMinWords   = 5
	TitleMaxWords   = 8
	ContentMaxWords = 100

	MyPostsPageSize    = 3
	PublicPageSize     = 10
	MaxPageSize        = 100
	MaxSearchTermBytes = 100

	MaxThumbnailSizeBytes = 10 * 1024 * 1024
	DefaultMaxRequestSize = 1 << 20
	MultipartMemoryLimit  = 4 << 20

	DBPoolMaxOpenConns    = 25
	DBPoolMinOpenConns    = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = time.Second
	DBPoolMetricsInterval = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultBlogHTTPPort = "8080"

	DefaultRequestTimeout = 5 * time.Second

	// Thumbnail uploads to the media host get a long window and no retry.
	DefaultMediaUploadTimeout = 20 * time.Minute

	DefaultAccessTokenTTL          = 30 * time.Minute
	DefaultRefreshTokenTTL         = 7 * 24 * time.Hour
	DefaultMaxRefreshTokensPerUser = 5

	RefreshTokenCleanupInterval = time.Hour

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
