package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Arooshimran/doma-backend/internal/domain"
)

// CategoryService manages the category catalog. Vendors reference
// categories by free-text name during product creation, so the central
// operation is find-or-create by name.
type CategoryService struct {
	repo domain.CategoryRepository
}

// NewCategoryService creates a service backed by the given repository.
func NewCategoryService(repo domain.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// Ensure returns the category with the given name, creating it when it
// does not exist yet. Names are trimmed before lookup so "Books" and
// "Books " resolve to the same category.
func (s *CategoryService) Ensure(ctx context.Context, name string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	if err := requireField("name", name); err != nil {
		return domain.Category{}, err
	}

	existing, err := s.repo.GetByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrCategoryNotFound) {
		return domain.Category{}, fmt.Errorf("finding category: %w", err)
	}

	category := domain.NewCategory(generateID(), name)
	if err := s.repo.Create(ctx, category); err != nil {
		// Lost a create race: the concurrent writer's row is the answer.
		var slugErr *domain.SlugConflictError
		if errors.As(err, &slugErr) {
			return s.repo.GetByName(ctx, name)
		}
		return domain.Category{}, fmt.Errorf("creating category: %w", err)
	}

	return category, nil
}

// List returns all categories ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.repo.List(ctx)
}
