package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mstolbov/market_api/internal/models"
	"github.com/mstolbov/market_api/internal/repo"
)

type CartService struct {
	DB   *gorm.DB
	Repo *repo.GormRepo
}

func (s *CartService) List(ctx context.Context, userID uint) ([]models.CartItem, error) {
	return s.Repo.ListCart(ctx, userID)
}

// Add puts quantity units of a product into the cart, merging with an
// existing line. Quantities below 1 are treated as 1. The merge runs in
// a transaction with the increment folded into a single update, so
// concurrent adds to the same line accumulate instead of overwriting.
func (s *CartService) Add(ctx context.Context, userID, productID uint, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	var line *models.CartItem
	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repo.New(tx)

		if _, err := txRepo.GetProduct(ctx, productID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("product %d: %w", productID, ErrNotFound)
			}
			return err
		}

		merged, err := txRepo.MergeCartLine(ctx, userID, productID, quantity)
		if err != nil {
			return err
		}
		if !merged {
			line = &models.CartItem{UserID: userID, ProductID: productID, Quantity: uint(quantity)}
			return txRepo.CreateCartLine(ctx, line)
		}

		line, err = txRepo.GetCartLine(ctx, userID, productID)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	return line, nil
}

// SetQuantity overwrites a line's quantity. Zero or negative removes the
// line, keeping the quantity>0 invariant by construction.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID uint, quantity int) (*models.CartItem, error) {
	item, err := s.Repo.GetCartLine(ctx, userID, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("cart line for product %d: %w", productID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		if err := s.Repo.DeleteCartLine(ctx, userID, productID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	item.Quantity = uint(quantity)
	if err := s.Repo.SaveCartLine(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *CartService) Remove(ctx context.Context, userID, productID uint) error {
	if _, err := s.Repo.GetCartLine(ctx, userID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("cart line for product %d: %w", productID, ErrNotFound)
		}
		return err
	}
	return s.Repo.DeleteCartLine(ctx, userID, productID)
}
