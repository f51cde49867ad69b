package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mstolbov/market_api/internal/hash"
	"github.com/mstolbov/market_api/internal/models"
	"github.com/mstolbov/market_api/internal/repo"
	"github.com/mstolbov/market_api/internal/tokens"
	"github.com/mstolbov/market_api/internal/transport"
	"github.com/mstolbov/market_api/internal/validation"
)

type AuthService struct {
	Repo          *repo.GormRepo
	JWTSecret     []byte
	RefreshSecret []byte
}

var registerSchema = validation.NewSchema().
	Required("name", validation.StrLen(1, 100)).
	Required("email", validation.Email()).
	Optional("phone", validation.Phone()).
	Required("password", validation.StrLen(8, 72), validation.PasswordStrength())

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	User         *models.User
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	if err := validationErr(registerSchema.Validate(map[string]any{
		"name":     req.Name,
		"email":    req.Email,
		"phone":    req.Phone,
		"password": req.Password,
	})); err != nil {
		return nil, err
	}

	if _, err := s.Repo.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email %s: %w", req.Email, ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Role:         "user",
		Active:       true,
		PasswordHash: pwHash,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.Repo.GetUserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("invalid credentials: %w", ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}
	if !user.Active || !hash.CheckPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("invalid credentials: %w", ErrUnauthenticated)
	}

	access, accessExp, err := tokens.SignAccessToken(user.ID, user.Email, user.Role, s.JWTSecret)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := tokens.SignRefreshToken(user.ID, user.Role, s.RefreshSecret)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.SaveRefreshToken(ctx, refresh, user.ID, refreshExp); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		User:         user,
	}, nil
}

// Refresh rotates a refresh token: the old one is revoked, a new pair is
// issued.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*LoginResult, error) {
	claims, err := tokens.RefreshClaimsFromToken(rawToken, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", ErrUnauthenticated)
	}

	stored, err := s.Repo.GetRefreshToken(ctx, rawToken)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("refresh token unknown: %w", ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}
	if stored.Revoked || time.Now().After(stored.ExpiresAt) {
		return nil, fmt.Errorf("refresh token expired or revoked: %w", ErrUnauthenticated)
	}

	user, err := s.Repo.GetUser(ctx, stored.UserID)
	if err != nil {
		return nil, fmt.Errorf("refresh token subject: %w", ErrUnauthenticated)
	}
	if claims.Subject != fmt.Sprint(user.ID) {
		return nil, fmt.Errorf("refresh token subject mismatch: %w", ErrUnauthenticated)
	}

	if err := s.Repo.RevokeRefreshToken(ctx, rawToken); err != nil {
		return nil, err
	}

	access, accessExp, err := tokens.SignAccessToken(user.ID, user.Email, user.Role, s.JWTSecret)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := tokens.SignRefreshToken(user.ID, user.Role, s.RefreshSecret)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.SaveRefreshToken(ctx, refresh, user.ID, refreshExp); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		User:         user,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	return s.Repo.RevokeRefreshToken(ctx, rawToken)
}
