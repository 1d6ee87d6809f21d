package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	authdomain "github.com/inklet-app/inklet/backend/internal/auth/domain"
	authrepo "github.com/inklet-app/inklet/backend/internal/auth/repository"
	"github.com/inklet-app/inklet/backend/internal/common/constants"
	commoncrypto "github.com/inklet-app/inklet/backend/internal/common/crypto"
	commonerrors "github.com/inklet-app/inklet/backend/internal/common/errors"
	"github.com/inklet-app/inklet/backend/internal/common/logger"
	"github.com/inklet-app/inklet/backend/internal/observability/metrics"
	userdomain "github.com/inklet-app/inklet/backend/internal/user/domain"
	userrepo "github.com/inklet-app/inklet/backend/internal/user/repository"
)

type AuthService struct {
	repo             userrepo.Repository
	refreshTokenRepo authrepo.RefreshTokenRepository
	hasher           commoncrypto.PasswordHasher
	idGenerator      commoncrypto.IDGenerator
	jwtSecret        []byte
	now              func() time.Time
	log              *logger.Logger
	accessTokenTTL   time.Duration
	refreshTokenTTL  time.Duration
	maxRefreshTokens int
}

func NewAuthService(
	repo userrepo.Repository,
	refreshTokenRepo authrepo.RefreshTokenRepository,
	hasher commoncrypto.PasswordHasher,
	idGenerator commoncrypto.IDGenerator,
	jwtSecret string,
	accessTokenTTL time.Duration,
	refreshTokenTTL time.Duration,
	maxRefreshTokens int,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		repo:             repo,
		refreshTokenRepo: refreshTokenRepo,
		hasher:           hasher,
		idGenerator:      idGenerator,
		jwtSecret:        []byte(jwtSecret),
		now:              time.Now,
		log:              log,
		accessTokenTTL:   accessTokenTTL,
		refreshTokenTTL:  refreshTokenTTL,
		maxRefreshTokens: maxRefreshTokens,
	}
}

// SetNow overrides the clock. Tests only.
func (s *AuthService) SetNow(now func() time.Time) {
	s.now = now
}

type RegisterInput struct {
	Username string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	UserID           string
	Username         string
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "register_attempt",
	}).Info("register attempt")

	if err := validateCredentials(input.Username, input.Password); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("validation_failed").Inc()
		return AuthResult{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		return AuthResult{}, err
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return AuthResult{}, err
	}

	user := userdomain.User{
		ID:           userdomain.ID(id),
		Username:     input.Username,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, commonerrors.ErrUsernameAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_username_exists",
			}).Warn("register failed: already exists")
			metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
			return AuthResult{}, ErrUsernameTaken
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_create_failed",
		}).Errorf("register failed: %v", err)
		return AuthResult{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	accessToken, refresh, err := s.issueTokens(ctx, user)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"user_id":  string(user.ID),
			"action":   "register_token_issue_failed",
		}).Errorf("register failed: token issue error: %v", err)
		return AuthResult{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "register_success",
	}).Info("register success")
	metrics.RegistrationsTotal.WithLabelValues("success").Inc()

	return AuthResult{
		UserID:           string(user.ID),
		Username:         user.Username,
		AccessToken:      accessToken,
		RefreshToken:     refresh.RawToken,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "login_attempt",
	}).Info("login attempt")

	if err := validateCredentials(input.Username, input.Password); err != nil {
		metrics.LoginsTotal.WithLabelValues("validation_failed").Inc()
		return AuthResult{}, err
	}

	user, err := s.repo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "login_user_not_found",
			}).Warn("login failed: not found")
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_invalid_password",
		}).Warn("login failed: invalid password")
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return AuthResult{}, ErrInvalidCredentials
	}

	accessToken, refresh, err := s.issueTokens(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "login_success",
	}).Info("login success")
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	return AuthResult{
		UserID:           string(user.ID),
		Username:         user.Username,
		AccessToken:      accessToken,
		RefreshToken:     refresh.RawToken,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}

// RefreshAccessToken rotates the refresh token. The single DELETE acts as the
// claim: losing the race to another request invalidates this one.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (AuthResult, error) {
	if refreshToken == "" {
		return AuthResult{}, ErrInvalidRefreshToken
	}

	hash := hashRefreshToken(refreshToken)

	stored, err := s.refreshTokenRepo.FindByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, authrepo.ErrRefreshTokenNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"action": "refresh_token_not_found",
			}).Warn("refresh token failed: not found")
			return AuthResult{}, ErrInvalidRefreshToken
		}
		return AuthResult{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	if s.now().After(stored.ExpiresAt) {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": stored.UserID,
			"action":  "refresh_token_expired",
		}).Warn("refresh token expired")
		metrics.RefreshTokensExpired.Inc()
		if err := s.refreshTokenRepo.DeleteByTokenHash(ctx, hash); err != nil && !errors.Is(err, authrepo.ErrRefreshTokenNotFound) {
			return AuthResult{}, commonerrors.ErrDatabaseError.WithCause(err)
		}
		return AuthResult{}, ErrRefreshTokenExpired
	}

	if err := s.refreshTokenRepo.DeleteByTokenHash(ctx, hash); err != nil {
		if errors.Is(err, authrepo.ErrRefreshTokenNotFound) {
			return AuthResult{}, ErrInvalidRefreshToken
		}
		return AuthResult{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	user, err := s.repo.FindByID(ctx, userdomain.ID(stored.UserID))
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": stored.UserID,
			"action":  "refresh_token_user_lookup_failed",
		}).Errorf("refresh token failed: user lookup error: %v", err)
		return AuthResult{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	accessToken, refresh, err := s.issueTokens(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": stored.UserID,
		"action":  "refresh_token_used",
	}).Info("refresh token used")
	metrics.RefreshTokensUsed.Inc()

	return AuthResult{
		UserID:           string(user.ID),
		Username:         user.Username,
		AccessToken:      accessToken,
		RefreshToken:     refresh.RawToken,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}

func (s *AuthService) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	hash := hashRefreshToken(refreshToken)

	if err := s.refreshTokenRepo.DeleteByTokenHash(ctx, hash); err != nil {
		if errors.Is(err, authrepo.ErrRefreshTokenNotFound) {
			return nil
		}
		s.log.WithFields(ctx, logger.Fields{
			"action": "revoke_refresh_token_failed",
		}).Errorf("revoke refresh token failed: %v", err)
		return err
	}

	metrics.RefreshTokensRevoked.Inc()
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, user userdomain.User) (string, authdomain.RefreshToken, error) {
	accessToken, err := s.issueAccessToken(user)
	if err != nil {
		return "", authdomain.RefreshToken{}, err
	}

	refresh, err := s.issueRefreshToken(ctx, user)
	if err != nil {
		return "", authdomain.RefreshToken{}, err
	}

	return accessToken, refresh, nil
}

func (s *AuthService) issueAccessToken(user userdomain.User) (string, error) {
	expiresAt := s.now().Add(s.accessTokenTTL)
	claims := jwt.MapClaims{
		"sub": string(user.ID),
		"usr": user.Username,
		"exp": expiresAt.Unix(),
		"iat": s.now().Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := t.SignedString(s.jwtSecret)
	if err != nil {
		return "", err
	}

	metrics.AccessTokensIssued.Inc()
	return tokenString, nil
}

func (s *AuthService) issueRefreshToken(ctx context.Context, user userdomain.User) (authdomain.RefreshToken, error) {
	count, err := s.refreshTokenRepo.CountByUserID(ctx, string(user.ID))
	if err != nil {
		return authdomain.RefreshToken{}, err
	}

	if count >= s.maxRefreshTokens {
		if err := s.refreshTokenRepo.DeleteOldestByUserID(ctx, string(user.ID)); err != nil {
			s.log.WithFields(ctx, logger.Fields{
				"user_id": string(user.ID),
				"action":  "delete_oldest_refresh_token_failed",
			}).Warnf("failed to delete oldest refresh token: %v", err)
		}
	}

	rawToken, err := generateRefreshToken()
	if err != nil {
		return authdomain.RefreshToken{}, err
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return authdomain.RefreshToken{}, err
	}

	stored := authdomain.RefreshToken{
		ID:        id,
		TokenHash: hashRefreshToken(rawToken),
		UserID:    string(user.ID),
		ExpiresAt: s.now().Add(s.refreshTokenTTL),
		CreatedAt: s.now(),
	}

	if err := s.refreshTokenRepo.Create(ctx, stored); err != nil {
		return authdomain.RefreshToken{}, err
	}

	metrics.RefreshTokensIssued.Inc()

	stored.RawToken = rawToken
	return stored, nil
}

func generateRefreshToken() (string, error) {
	b := make([]byte, constants.RefreshTokenSize)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
