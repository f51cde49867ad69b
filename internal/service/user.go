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

type UserService struct {
	Repo *repo.GormRepo
}

var userSchema = validation.NewSchema().
	Required("name", validation.StrLen(1, 100)).
	Required("email", validation.Email()).
	Optional("phone", validation.Phone()).
	Optional("role", validation.OneOf("user", "admin"))

type ListUsersOptions struct {
	Role   string
	Active *bool
	Query  string
	SortBy string
	Desc   bool
	Page   int
	Size   int
}

var userSortKeys = map[string]func(a, b models.User) bool{
	"id":         func(a, b models.User) bool { return a.ID < b.ID },
	"name":       func(a, b models.User) bool { return a.Name < b.Name },
	"email":      func(a, b models.User) bool { return a.Email < b.Email },
	"created_at": func(a, b models.User) bool { return a.CreatedAt.Before(b.CreatedAt) },
}

func (s *UserService) List(ctx context.Context, opts ListUsersOptions) ([]models.User, query.Meta, error) {
	users, err := s.Repo.ListUsers(ctx)
	if err != nil {
		return nil, query.Meta{}, err
	}

	var preds []query.Predicate[models.User]
	if opts.Role != "" {
		preds = append(preds, func(u models.User) bool { return u.Role == opts.Role })
	}
	if opts.Active != nil {
		preds = append(preds, func(u models.User) bool { return u.Active == *opts.Active })
	}
	if opts.Query != "" {
		preds = append(preds, func(u models.User) bool {
			return query.ContainsFold(u.Name, opts.Query) || query.ContainsFold(u.Email, opts.Query)
		})
	}

	filtered := query.Filter(users, preds...)
	sorted := query.SortBy(filtered, userSortKeys[opts.SortBy], opts.Desc)
	page, meta := query.Paginate(sorted, opts.Page, opts.Size)
	return page, meta, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.Repo.GetUser(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return user, err
}

// emailTaken reports whether another user already owns the email.
func (s *UserService) emailTaken(ctx context.Context, email string, selfID uint) (bool, error) {
	existing, err := s.Repo.GetUserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return existing.ID != selfID, nil
}

func (s *UserService) Create(ctx context.Context, req transport.CreateUserRequest, passwordHash string) (*models.User, error) {
	if err := validationErr(userSchema.Validate(map[string]any{
		"name":  req.Name,
		"email": req.Email,
		"phone": req.Phone,
		"role":  req.Role,
	})); err != nil {
		return nil, err
	}

	taken, err := s.emailTaken(ctx, req.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("email %s: %w", req.Email, ErrConflict)
	}

	role := req.Role
	if role == "" {
		role = "user"
	}
	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Role:         role,
		Active:       true,
		PasswordHash: passwordHash,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Upsert implements PUT semantics: replace the record at id, or create it
// there when absent. Applying the same payload twice yields the same stored
// record.
func (s *UserService) Upsert(ctx context.Context, id uint, req transport.PutUserRequest) (*models.User, bool, error) {
	if err := validationErr(userSchema.Validate(map[string]any{
		"name":  req.Name,
		"email": req.Email,
		"phone": req.Phone,
		"role":  req.Role,
	})); err != nil {
		return nil, false, err
	}

	taken, err := s.emailTaken(ctx, req.Email, id)
	if err != nil {
		return nil, false, err
	}
	if taken {
		return nil, false, fmt.Errorf("email %s: %w", req.Email, ErrConflict)
	}

	role := req.Role
	if role == "" {
		role = "user"
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	user, err := s.Repo.GetUser(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		created := &models.User{
			ID:     id,
			Name:   req.Name,
			Email:  req.Email,
			Phone:  req.Phone,
			Role:   role,
			Active: active,
		}
		if err := s.Repo.CreateUser(ctx, created); err != nil {
			return nil, false, err
		}
		return created, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	user.Name = req.Name
	user.Email = req.Email
	user.Phone = req.Phone
	user.Role = role
	user.Active = active
	if err := s.Repo.SaveUser(ctx, user); err != nil {
		return nil, false, err
	}
	return user, false, nil
}

// Patch merges only the provided fields into the stored record.
func (s *UserService) Patch(ctx context.Context, id uint, req transport.PatchUserRequest) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	values := map[string]any{
		"name":  user.Name,
		"email": user.Email,
		"phone": user.Phone,
		"role":  user.Role,
	}
	if req.Name != nil {
		values["name"] = *req.Name
	}
	if req.Email != nil {
		values["email"] = *req.Email
	}
	if req.Phone != nil {
		values["phone"] = *req.Phone
	}
	if req.Role != nil {
		values["role"] = *req.Role
	}
	if err := validationErr(userSchema.Validate(values)); err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != user.Email {
		taken, err := s.emailTaken(ctx, *req.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("email %s: %w", *req.Email, ErrConflict)
		}
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	if err := s.Repo.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.Repo.DeleteUser(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return user, err
}
