package repo

import (
	"context"

	"github.com/mstolbov/market_api/internal/models"
)

func (r *GormRepo) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.DB.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *GormRepo) ListComments(ctx context.Context) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *GormRepo) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.DB.WithContext(ctx).Create(comment).Error
}

func (r *GormRepo) SaveComment(ctx context.Context, comment *models.Comment) error {
	return r.DB.WithContext(ctx).Save(comment).Error
}

func (r *GormRepo) DeleteComment(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.DB.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Delete(&models.Comment{}, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}
