package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Evgen-Mutagen/finances/internal/core"
	"github.com/Evgen-Mutagen/finances/internal/model"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

// Claims is the payload of a session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type AuthService struct {
	credentials  CredentialVerifier
	jwtSecretKey []byte
	tokenTTL     time.Duration
	logger       *zap.Logger
}

func NewAuthService(credentials CredentialVerifier, jwtSecretKey string, tokenTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		credentials:  credentials,
		jwtSecretKey: []byte(jwtSecretKey),
		tokenTTL:     tokenTTL,
		logger:       logger,
	}
}

var _ core.AuthService = (*AuthService)(nil)

// Login returns a signed token for a valid email/password pair. Unknown
// emails and wrong passwords both yield core.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, ok, err := s.credentials.VerifyCredential(ctx, email, password)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", core.ErrInvalidCredentials
	}

	token, err := s.generateToken(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Debug("Token issued",
		zap.String("user_id", user.ID),
		zap.Duration("ttl", s.tokenTTL))

	return token, nil
}

// Authorize verifies the token signature and expiry without touching the store.
func (s *AuthService) Authorize(tokenString string) (*model.Identity, error) {
	if tokenString == "" {
		return nil, core.ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.jwtSecretKey, nil
	})
	if err != nil {
		s.logger.Debug("Token rejected", zap.Error(err))
		return nil, core.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" || claims.ExpiresAt == nil {
		return nil, core.ErrInvalidToken
	}

	return &model.Identity{UserID: claims.UserID, Email: claims.Email}, nil
}

func (s *AuthService) generateToken(userID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		UserID: userID,
		Email:  email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecretKey)
}
