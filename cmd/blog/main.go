package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	authcleanup "github.com/inklet-app/inklet/backend/internal/auth/cleanup"
	authhttp "github.com/inklet-app/inklet/backend/internal/auth/http"
	authrepo "github.com/inklet-app/inklet/backend/internal/auth/repository"
	authservice "github.com/inklet-app/inklet/backend/internal/auth/service"
	"github.com/inklet-app/inklet/backend/internal/common/config"
	commoncrypto "github.com/inklet-app/inklet/backend/internal/common/crypto"
	"github.com/inklet-app/inklet/backend/internal/common/db"
	commonhttp "github.com/inklet-app/inklet/backend/internal/common/http"
	"github.com/inklet-app/inklet/backend/internal/common/logger"
	srv "github.com/inklet-app/inklet/backend/internal/common/server"
	"github.com/inklet-app/inklet/backend/internal/media"
	postshttp "github.com/inklet-app/inklet/backend/internal/posts/http"
	postsrepo "github.com/inklet-app/inklet/backend/internal/posts/repository"
	postsservice "github.com/inklet-app/inklet/backend/internal/posts/service"
	userrepo "github.com/inklet-app/inklet/backend/internal/user/repository"
)

func main() {
	log, err := logger.New(os.Getenv("LOG_DIR"), "blog", os.Getenv("LOG_LEVEL"))
	if err != nil {
		os.Stderr.WriteString(fmt.Sprintf("failed to initialize logger: %v\n", err))
		os.Exit(1)
	}

	cfg, err := config.LoadBlogConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := db.Migrate(log, cfg.DatabaseURL); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := db.NewPool(ctx, log, cfg.DatabaseURL)
	defer pool.Close()

	hasher := &commoncrypto.BcryptHasher{}
	idGenerator := &commoncrypto.UUIDGenerator{}

	userRepo := userrepo.NewPgRepository(pool)
	refreshTokenRepo := authrepo.NewPgRefreshTokenRepository(pool)
	authService := authservice.NewAuthService(
		userRepo,
		refreshTokenRepo,
		hasher,
		idGenerator,
		cfg.JWTSecret,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
		cfg.MaxRefreshTokensPerUser,
		log,
	)

	relay := media.NewRelayService(cfg.MediaUploadURL, cfg.MediaDeleteURL, cfg.MediaAPIKey, cfg.MediaUploadTimeout, log)
	postRepo := postsrepo.NewPgRepository(pool)
	postService := postsservice.NewPostService(postRepo, relay, idGenerator, log)

	go authcleanup.StartRefreshTokenCleanup(ctx, refreshTokenRepo, log)

	postsHandler := postshttp.NewHandler(postService, cfg.JWTSecret, cfg.RequestTimeout, cfg.MediaUploadTimeout, log)

	mux := http.NewServeMux()
	mux.Handle("/api/auth/", authhttp.NewHandler(authService, cfg.RequestTimeout, log))
	mux.Handle("/api/posts", postsHandler)
	mux.Handle("/api/posts/", postsHandler)
	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	mux.Handle("/metrics", promhttp.Handler())

	handler := commonhttp.BuildBaseHandler("blog", log, mux)

	// Post mutations relay thumbnails to the media host inside the request,
	// so the connection stays open for the whole upload window.
	serverConfig := srv.DefaultConfig(cfg.HTTPPort)
	serverConfig.ReadTimeout = cfg.MediaUploadTimeout + time.Minute
	serverConfig.WriteTimeout = cfg.MediaUploadTimeout + time.Minute
	server := srv.New(serverConfig, handler)

	shutdownHooks := []srv.ShutdownHook{
		func(ctx context.Context) error {
			log.Infof("blog service: stopping background goroutines")
			cancel()
			return nil
		},
	}

	srv.StartWithGracefulShutdown(server, log, "blog", shutdownHooks)
}
