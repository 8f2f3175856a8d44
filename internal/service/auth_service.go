package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/cybertest-backend/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// TokenTypeAdmin marks tokens issued to the question bank admin.
const TokenTypeAdmin = "admin"

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
}

// AuthService checks admin credentials behind the login attempt limiter and issues admin JWTs.
type AuthService struct {
	cfg          *config.Config
	limiter      AttemptLimiter
	passwordHash []byte
	log          zerolog.Logger
}

// NewAuthService creates a new AuthService. A plain-text admin password in cfg is hashed
// once here; an existing bcrypt hash is used as-is.
func NewAuthService(cfg *config.Config, limiter AttemptLimiter, log zerolog.Logger) (*AuthService, error) {
	hash := []byte(cfg.AdminPassword)
	if _, err := bcrypt.Cost(hash); err != nil {
		hash, err = bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), cfg.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
	}

	return &AuthService{
		cfg:          cfg,
		limiter:      limiter,
		passwordHash: hash,
		log:          log.With().Str("component", "auth_service").Logger(),
	}, nil
}

// HashPassword hashes a password with the configured bcrypt cost.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(hash), err
}

// Login authenticates the admin for clientID. The attempt is reserved in the limiter
// before the credentials are checked, so concurrent guesses from one client cannot
// overrun the threshold. A blocked client is refused; a success clears the client's log.
func (s *AuthService) Login(ctx context.Context, username, password, clientID string) (string, error) {
	allowed, err := s.limiter.Attempt(ctx, clientID)
	if err != nil {
		return "", err
	}
	if !allowed {
		s.log.Warn().Str("client_id", clientID).Msg("Login blocked by attempt limiter")
		return "", ErrRateLimited
	}

	if !s.checkCredentials(username, password) {
		s.log.Info().Str("client_id", clientID).Msg("Invalid admin credentials")
		return "", ErrInvalidCredentials
	}

	if err := s.limiter.Reset(ctx, clientID); err != nil {
		return "", err
	}

	token, err := s.GenerateAdminToken()
	if err != nil {
		return "", err
	}

	s.log.Info().Str("client_id", clientID).Msg("Admin logged in")
	return token, nil
}

func (s *AuthService) checkCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.AdminUsername)) == 1
	passOK := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) == nil
	return userOK && passOK
}

// GenerateAdminToken creates a signed admin JWT.
func (s *AuthService) GenerateAdminToken() (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   s.cfg.AdminUsername,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		TokenType: TokenTypeAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
