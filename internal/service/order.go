package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mstolbov/market_api/internal/models"
	"github.com/mstolbov/market_api/internal/query"
	"github.com/mstolbov/market_api/internal/repo"
	"github.com/mstolbov/market_api/internal/validation"
)

type OrderService struct {
	DB   *gorm.DB
	Repo *repo.GormRepo
}

// Checkout turns the user's cart into an immutable order in one
// transaction: every line needs sufficient stock or the whole operation
// fails with no mutation; on success stock is decremented, the order is
// recorded with unit prices snapshotted, and the cart is cleared.
func (s *OrderService) Checkout(ctx context.Context, userID uint) (*models.Order, error) {
	var order *models.Order

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repo.New(tx)

		items, err := txRepo.ListCart(ctx, userID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		var (
			total      float64
			orderItems []models.OrderItem
		)
		for _, it := range items {
			product, err := txRepo.GetProduct(ctx, it.ProductID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("product %d: %w", it.ProductID, ErrNotFound)
			}
			if err != nil {
				return err
			}
			// the guard lives inside the update itself, so a concurrent
			// checkout racing for the same units cannot slip past it
			taken, err := txRepo.DecrementStock(ctx, product.ID, it.Quantity)
			if err != nil {
				return err
			}
			if !taken {
				current, err := txRepo.GetProduct(ctx, it.ProductID)
				if err != nil {
					return err
				}
				return &StockError{
					ProductID: product.ID,
					Requested: it.Quantity,
					Available: current.Stock,
				}
			}

			total += float64(it.Quantity) * product.Price
			orderItems = append(orderItems, models.OrderItem{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: product.Price,
			})
		}

		order = &models.Order{
			Reference: uuid.NewString(),
			UserID:    userID,
			Status:    models.OrderStatusPending,
			Total:     total,
			Items:     orderItems,
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		return txRepo.ClearCart(ctx, userID)
	})
	if txErr != nil {
		return nil, txErr
	}
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, actor Actor, id uint) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if !actor.CanMutate(order.UserID) {
		return nil, fmt.Errorf("order %d: %w", id, ErrForbidden)
	}
	return order, nil
}

type ListOrdersOptions struct {
	Status string
	Page   int
	Size   int
}

// List shows the actor's own orders; admins see everyone's.
func (s *OrderService) List(ctx context.Context, actor Actor, opts ListOrdersOptions) ([]models.Order, query.Meta, error) {
	var (
		orders []models.Order
		err    error
	)
	if actor.Role == "admin" {
		orders, err = s.Repo.ListOrders(ctx)
	} else {
		orders, err = s.Repo.ListOrdersByUser(ctx, actor.UserID)
	}
	if err != nil {
		return nil, query.Meta{}, err
	}

	var preds []query.Predicate[models.Order]
	if opts.Status != "" {
		preds = append(preds, func(o models.Order) bool { return string(o.Status) == opts.Status })
	}

	filtered := query.Filter(orders, preds...)
	page, meta := query.Paginate(filtered, opts.Page, opts.Size)
	return page, meta, nil
}

// Transition moves an order along the strict status table. Unknown target
// statuses are a validation failure; legal statuses reached via an illegal
// edge are a conflict.
func (s *OrderService) Transition(ctx context.Context, actor Actor, id uint, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, &ValidationError{Fields: []validation.FieldError{
			{Field: "status", Message: "must be one of: pending, confirmed, shipped, delivered, cancelled"},
		}}
	}

	order, err := s.Repo.GetOrder(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if !actor.CanMutate(order.UserID) {
		return nil, fmt.Errorf("order %d: %w", id, ErrForbidden)
	}
	// only admins advance fulfillment; owners may still cancel pending orders
	if actor.Role != "admin" && next != models.OrderStatusCancelled {
		return nil, fmt.Errorf("order %d: %w", id, ErrForbidden)
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, &TransitionError{From: string(order.Status), To: string(next)}
	}

	order.Status = next
	if err := s.Repo.SaveOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}
