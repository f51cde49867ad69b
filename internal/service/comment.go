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

type CommentService struct {
	Repo *repo.GormRepo
}

var commentSchema = validation.NewSchema().
	Required("body", validation.StrLen(1, 5000))

type ListCommentsOptions struct {
	PostID   uint
	AuthorID uint
	Page     int
	Size     int
}

func (s *CommentService) List(ctx context.Context, opts ListCommentsOptions) ([]models.Comment, query.Meta, error) {
	comments, err := s.Repo.ListComments(ctx)
	if err != nil {
		return nil, query.Meta{}, err
	}

	var preds []query.Predicate[models.Comment]
	if opts.PostID != 0 {
		preds = append(preds, func(c models.Comment) bool { return c.PostID == opts.PostID })
	}
	if opts.AuthorID != 0 {
		preds = append(preds, func(c models.Comment) bool { return c.AuthorID == opts.AuthorID })
	}

	filtered := query.Filter(comments, preds...)
	page, meta := query.Paginate(filtered, opts.Page, opts.Size)
	return page, meta, nil
}

func (s *CommentService) Get(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := s.Repo.GetComment(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("comment %d: %w", id, ErrNotFound)
	}
	return comment, err
}

func (s *CommentService) Create(ctx context.Context, actor Actor, req transport.CreateCommentRequest) (*models.Comment, error) {
	if err := validationErr(commentSchema.Validate(map[string]any{
		"body": req.Body,
	})); err != nil {
		return nil, err
	}

	// the target post must exist and not be soft-deleted
	post, err := s.Repo.GetPost(ctx, req.PostID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("post %d: %w", req.PostID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if post.DeletedAt != nil {
		return nil, fmt.Errorf("post %d: %w", req.PostID, ErrNotFound)
	}

	comment := &models.Comment{
		PostID:   req.PostID,
		AuthorID: actor.UserID,
		Body:     req.Body,
	}
	if err := s.Repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Upsert implements PUT semantics: replace the comment at id, or create
// it there when absent. The target post must exist and not be soft-deleted.
func (s *CommentService) Upsert(ctx context.Context, actor Actor, id uint, req transport.CreateCommentRequest) (*models.Comment, bool, error) {
	if err := validationErr(commentSchema.Validate(map[string]any{
		"body": req.Body,
	})); err != nil {
		return nil, false, err
	}

	post, err := s.Repo.GetPost(ctx, req.PostID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("post %d: %w", req.PostID, ErrNotFound)
	}
	if err != nil {
		return nil, false, err
	}
	if post.DeletedAt != nil {
		return nil, false, fmt.Errorf("post %d: %w", req.PostID, ErrNotFound)
	}

	comment, err := s.Repo.GetComment(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		created := &models.Comment{
			ID:       id,
			PostID:   req.PostID,
			AuthorID: actor.UserID,
			Body:     req.Body,
		}
		if err := s.Repo.CreateComment(ctx, created); err != nil {
			return nil, false, err
		}
		return created, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !actor.CanMutate(comment.AuthorID) {
		return nil, false, fmt.Errorf("comment %d: %w", id, ErrForbidden)
	}

	comment.PostID = req.PostID
	comment.Body = req.Body
	if err := s.Repo.SaveComment(ctx, comment); err != nil {
		return nil, false, err
	}
	return comment, false, nil
}

func (s *CommentService) Patch(ctx context.Context, actor Actor, id uint, req transport.PatchCommentRequest) (*models.Comment, error) {
	comment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanMutate(comment.AuthorID) {
		return nil, fmt.Errorf("comment %d: %w", id, ErrForbidden)
	}

	if req.Body != nil {
		if err := validationErr(commentSchema.Validate(map[string]any{
			"body": *req.Body,
		})); err != nil {
			return nil, err
		}
		comment.Body = *req.Body
	}
	if err := s.Repo.SaveComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, actor Actor, id uint) (*models.Comment, error) {
	comment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanMutate(comment.AuthorID) {
		return nil, fmt.Errorf("comment %d: %w", id, ErrForbidden)
	}
	deleted, err := s.Repo.DeleteComment(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("comment %d: %w", id, ErrNotFound)
	}
	return deleted, err
}
