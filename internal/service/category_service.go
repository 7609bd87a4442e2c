package service

import (
	"context"
	"errors"
	"fmt"

	"go-remedyflow/internal/model"
	"go-remedyflow/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryInput struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=1000"`
	IsActive    *bool  `json:"isActive"`
	By          string `json:"-"`
}

type CategoryService interface {
	List(ctx context.Context, activeOnly bool) ([]model.Category, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Category, error)
	Create(ctx context.Context, in CategoryInput) (*model.Category, error)
	Update(ctx context.Context, id uuid.UUID, in CategoryInput) (*model.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	repo *repository.Repository
}

func NewCategoryService(repo *repository.Repository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) List(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	list, err := s.repo.Categories.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return list, nil
}

func (s *categoryService) Get(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	c, err := s.repo.Categories.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if c == nil {
		return nil, ErrCategoryNotFound
	}
	return c, nil
}

func (s *categoryService) Create(ctx context.Context, in CategoryInput) (*model.Category, error) {
	if err := validate(&in); err != nil {
		return nil, err
	}
	existing, err := s.repo.Categories.FindByName(ctx, in.Name)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if existing != nil {
		return nil, ErrNameConflict
	}

	c := &model.Category{Name: in.Name, Description: in.Description, IsActive: true}
	c.CreatedBy = in.By
	c.UpdatedBy = in.By
	if err := s.repo.Categories.Create(ctx, c); err != nil {
		return nil, mapCategoryWriteErr(err)
	}
	if in.IsActive != nil && !*in.IsActive {
		c.IsActive = false
		if err := s.repo.Categories.Update(ctx, c); err != nil {
			return nil, mapCategoryWriteErr(err)
		}
	}
	return c, nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, in CategoryInput) (*model.Category, error) {
	if err := validate(&in); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != c.Name {
		existing, err := s.repo.Categories.FindByName(ctx, in.Name)
		if err != nil {
			return nil, fmt.Errorf("find category: %w", err)
		}
		if existing != nil && existing.ID != c.ID {
			return nil, ErrNameConflict
		}
	}

	c.Name = in.Name
	c.Description = in.Description
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	c.UpdatedBy = in.By
	if err := s.repo.Categories.Update(ctx, c); err != nil {
		return nil, mapCategoryWriteErr(err)
	}
	return c, nil
}

func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if c.ProductCount > 0 {
		return fmt.Errorf("%w: category has %d products", ErrReferentialBlock, c.ProductCount)
	}
	if err := s.repo.Categories.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return ErrReferentialBlock
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func mapCategoryWriteErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrNameConflict
	}
	return fmt.Errorf("save category: %w", err)
}
