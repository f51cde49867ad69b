package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mstolbov/market_api/internal/models"
	"github.com/mstolbov/market_api/internal/query"
	"github.com/mstolbov/market_api/internal/repo"
	"github.com/mstolbov/market_api/internal/transport"
	"github.com/mstolbov/market_api/internal/validation"
)

type ProductService struct {
	Repo *repo.GormRepo
}

var productSchema = validation.NewSchema().
	Required("name", validation.StrLen(1, 200)).
	Optional("description", validation.StrLen(0, 2000)).
	Required("price", validation.NumRange(0, 1_000_000)).
	Optional("stock", validation.NumRange(0, 1_000_000))

type ListProductsOptions struct {
	Query    string
	MinPrice *float64
	MaxPrice *float64
	InStock  bool
	SortBy   string
	Desc     bool
	Page     int
	Size     int
}

var productSortKeys = map[string]func(a, b models.Product) bool{
	"id":    func(a, b models.Product) bool { return a.ID < b.ID },
	"name":  func(a, b models.Product) bool { return a.Name < b.Name },
	"price": func(a, b models.Product) bool { return a.Price < b.Price },
	"stock": func(a, b models.Product) bool { return a.Stock < b.Stock },
}

func (s *ProductService) List(ctx context.Context, opts ListProductsOptions) ([]models.Product, query.Meta, error) {
	products, err := s.Repo.ListProducts(ctx)
	if err != nil {
		return nil, query.Meta{}, err
	}

	var preds []query.Predicate[models.Product]
	if opts.Query != "" {
		preds = append(preds, func(p models.Product) bool {
			return query.ContainsFold(p.Name, opts.Query) || query.ContainsFold(p.Description, opts.Query)
		})
	}
	if opts.MinPrice != nil {
		preds = append(preds, func(p models.Product) bool { return p.Price >= *opts.MinPrice })
	}
	if opts.MaxPrice != nil {
		preds = append(preds, func(p models.Product) bool { return p.Price <= *opts.MaxPrice })
	}
	if opts.InStock {
		preds = append(preds, func(p models.Product) bool { return p.Stock > 0 })
	}

	filtered := query.Filter(products, preds...)
	sorted := query.SortBy(filtered, productSortKeys[opts.SortBy], opts.Desc)
	page, meta := query.Paginate(sorted, opts.Page, opts.Size)
	return page, meta, nil
}

func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return product, err
}

func (s *ProductService) Create(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	if err := validationErr(productSchema.Validate(map[string]any{
		"name":        req.Name,
		"description": req.Description,
		"price":       req.Price,
		"stock":       req.Stock,
	})); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	}
	if err := s.Repo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) Upsert(ctx context.Context, id uint, req transport.CreateProductRequest) (*models.Product, bool, error) {
	if err := validationErr(productSchema.Validate(map[string]any{
		"name":        req.Name,
		"description": req.Description,
		"price":       req.Price,
		"stock":       req.Stock,
	})); err != nil {
		return nil, false, err
	}

	product, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		created := &models.Product{
			ID:          id,
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Stock:       req.Stock,
		}
		if err := s.Repo.CreateProduct(ctx, created); err != nil {
			return nil, false, err
		}
		return created, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price
	product.Stock = req.Stock
	if err := s.Repo.SaveProduct(ctx, product); err != nil {
		return nil, false, err
	}
	return product, false, nil
}

func (s *ProductService) Patch(ctx context.Context, id uint, req transport.PatchProductRequest) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	values := map[string]any{
		"name":        product.Name,
		"description": product.Description,
		"price":       product.Price,
		"stock":       product.Stock,
	}
	if req.Name != nil {
		values["name"] = *req.Name
	}
	if req.Description != nil {
		values["description"] = *req.Description
	}
	if req.Price != nil {
		values["price"] = *req.Price
	}
	if req.Stock != nil {
		values["stock"] = *req.Stock
	}
	if err := validationErr(productSchema.Validate(values)); err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if err := s.Repo.SaveProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.Repo.DeleteProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return product, err
}
