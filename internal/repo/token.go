package repo

import (
	"context"
	"time"

	"github.com/mstolbov/market_api/internal/models"
)

func (r *GormRepo) SaveRefreshToken(ctx context.Context, token string, userID uint, expiresAt time.Time) error {
	rec := models.RefreshToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	return r.DB.WithContext(ctx).Create(&rec).Error
}

func (r *GormRepo) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var rec models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("token = ?", token).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *GormRepo) RevokeRefreshToken(ctx context.Context, token string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ?", token).Update("revoked", true).Error
}
