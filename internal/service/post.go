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

// Actor is the authenticated subject performing an operation.
type Actor struct {
	UserID uint
	Role   string
}

// CanMutate gates writes to owned resources: admins or the owner only.
func (a Actor) CanMutate(ownerID uint) bool {
	return a.Role == "admin" || a.UserID == ownerID
}

type PostService struct {
	Repo *repo.GormRepo
}

var postSchema = validation.NewSchema().
	Required("title", validation.StrLen(1, 200)).
	Optional("body", validation.StrLen(0, 50_000))

type ListPostsOptions struct {
	AuthorID uint
	Query    string
	SortBy   string
	Desc     bool
	Page     int
	Size     int
}

var postSortKeys = map[string]func(a, b models.Post) bool{
	"id":         func(a, b models.Post) bool { return a.ID < b.ID },
	"title":      func(a, b models.Post) bool { return a.Title < b.Title },
	"created_at": func(a, b models.Post) bool { return a.CreatedAt.Before(b.CreatedAt) },
}

func (s *PostService) List(ctx context.Context, opts ListPostsOptions) ([]models.Post, query.Meta, error) {
	posts, err := s.Repo.ListPosts(ctx)
	if err != nil {
		return nil, query.Meta{}, err
	}

	var preds []query.Predicate[models.Post]
	if opts.AuthorID != 0 {
		preds = append(preds, func(p models.Post) bool { return p.AuthorID == opts.AuthorID })
	}
	if opts.Query != "" {
		preds = append(preds, func(p models.Post) bool {
			return query.ContainsFold(p.Title, opts.Query) || query.ContainsFold(p.Body, opts.Query)
		})
	}

	filtered := query.Filter(posts, preds...)
	sorted := query.SortBy(filtered, postSortKeys[opts.SortBy], opts.Desc)
	page, meta := query.Paginate(sorted, opts.Page, opts.Size)
	return page, meta, nil
}

func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.Repo.GetPost(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	return post, err
}

func (s *PostService) Create(ctx context.Context, actor Actor, req transport.CreatePostRequest) (*models.Post, error) {
	if err := validationErr(postSchema.Validate(map[string]any{
		"title": req.Title,
		"body":  req.Body,
	})); err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID: actor.UserID,
		Title:    req.Title,
		Body:     req.Body,
	}
	if err := s.Repo.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Upsert implements PUT semantics: replace the post at id, or create it
// there when absent. Replacing a soft-deleted post revives it.
func (s *PostService) Upsert(ctx context.Context, actor Actor, id uint, req transport.CreatePostRequest) (*models.Post, bool, error) {
	if err := validationErr(postSchema.Validate(map[string]any{
		"title": req.Title,
		"body":  req.Body,
	})); err != nil {
		return nil, false, err
	}

	post, err := s.Repo.GetPost(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		created := &models.Post{
			ID:       id,
			AuthorID: actor.UserID,
			Title:    req.Title,
			Body:     req.Body,
		}
		if err := s.Repo.CreatePost(ctx, created); err != nil {
			return nil, false, err
		}
		return created, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !actor.CanMutate(post.AuthorID) {
		return nil, false, fmt.Errorf("post %d: %w", id, ErrForbidden)
	}

	post.Title = req.Title
	post.Body = req.Body
	post.DeletedAt = nil
	if err := s.Repo.SavePost(ctx, post); err != nil {
		return nil, false, err
	}
	return post, false, nil
}

func (s *PostService) Patch(ctx context.Context, actor Actor, id uint, req transport.PatchPostRequest) (*models.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanMutate(post.AuthorID) {
		return nil, fmt.Errorf("post %d: %w", id, ErrForbidden)
	}

	values := map[string]any{"title": post.Title, "body": post.Body}
	if req.Title != nil {
		values["title"] = *req.Title
	}
	if req.Body != nil {
		values["body"] = *req.Body
	}
	if err := validationErr(postSchema.Validate(values)); err != nil {
		return nil, err
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Body != nil {
		post.Body = *req.Body
	}
	if err := s.Repo.SavePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Delete soft-deletes: the record keeps its row with deleted_at set.
func (s *PostService) Delete(ctx context.Context, actor Actor, id uint) (*models.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanMutate(post.AuthorID) {
		return nil, fmt.Errorf("post %d: %w", id, ErrForbidden)
	}
	if post.DeletedAt != nil {
		return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	if err := s.Repo.SoftDeletePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}
