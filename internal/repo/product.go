package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/mstolbov/market_api/internal/models"
)

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.DB.WithContext(ctx).Create(product).Error
}

func (r *GormRepo) SaveProduct(ctx context.Context, product *models.Product) error {
	return r.DB.WithContext(ctx).Save(product).Error
}

// DecrementStock takes quantity units off a product's stock in a single
// conditional update. It reports false when stock is short; the guard and
// the decrement happen in one statement, so two callers racing for the
// last unit can never both succeed.
func (r *GormRepo) DecrementStock(ctx context.Context, id, quantity uint) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Delete(&models.Product{}, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}
