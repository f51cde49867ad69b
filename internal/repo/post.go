package repo

import (
	"context"
	"time"

	"github.com/mstolbov/market_api/internal/models"
)

// GetPost returns the record even when it is soft-deleted; callers see the
// deleted_at marker.
func (r *GormRepo) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.DB.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// ListPosts excludes soft-deleted records.
func (r *GormRepo) ListPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := r.DB.WithContext(ctx).Where("deleted_at IS NULL").Order("id ASC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *GormRepo) CreatePost(ctx context.Context, post *models.Post) error {
	return r.DB.WithContext(ctx).Create(post).Error
}

func (r *GormRepo) SavePost(ctx context.Context, post *models.Post) error {
	return r.DB.WithContext(ctx).Save(post).Error
}

// SoftDeletePost marks the record instead of removing it.
func (r *GormRepo) SoftDeletePost(ctx context.Context, post *models.Post) error {
	now := time.Now().UTC()
	post.DeletedAt = &now
	return r.DB.WithContext(ctx).Save(post).Error
}
