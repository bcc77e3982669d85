package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"driftline/internal/auth"
	"driftline/internal/domain"
	"driftline/internal/repository"
	driftline_errors "driftline/pkg/errors"
)

// AuthService backs the stub backend's register/login endpoints and token
// validation. Accounts live on the profiles collection.
type AuthService struct {
	profiles *repository.PostgresProfileRepository
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(profiles *repository.PostgresProfileRepository, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		profiles: profiles,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (domain.Profile, string, error) {
	if _, err := s.profiles.GetByEmail(ctx, email); err == nil {
		return domain.Profile{}, "", driftline_errors.ErrAlreadyExists
	} else if !errors.Is(err, driftline_errors.ErrNotFound) {
		return domain.Profile{}, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Profile{}, "", fmt.Errorf("hash password: %w", err)
	}

	profile := domain.Profile{
		ID:            domain.NewID(),
		UserID:        domain.NewID(),
		Name:          name,
		Email:         email,
		PasswordHash:  string(hash),
		Followers:     domain.StringList{},
		Following:     domain.StringList{},
		Notifications: domain.StringList{},
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.profiles.Create(ctx, &profile); err != nil {
		return domain.Profile{}, "", err
	}

	token, err := s.issueToken(profile)
	if err != nil {
		return domain.Profile{}, "", err
	}
	return profile, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.Profile, string, error) {
	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, driftline_errors.ErrNotFound) {
			return domain.Profile{}, "", driftline_errors.ErrUnauthorized
		}
		return domain.Profile{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return domain.Profile{}, "", driftline_errors.ErrUnauthorized
	}

	token, err := s.issueToken(profile)
	if err != nil {
		return domain.Profile{}, "", err
	}
	return profile, token, nil
}

// ParseToken validates a bearer token and returns its claims.
func (s *AuthService) ParseToken(tokenString string) (auth.Claims, error) {
	var claims auth.Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return auth.Claims{}, driftline_errors.ErrUnauthorized
	}
	return claims, nil
}

func (s *AuthService) issueToken(profile domain.Profile) (string, error) {
	now := time.Now()
	claims := auth.Claims{
		UserID: profile.UserID,
		Name:   profile.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
