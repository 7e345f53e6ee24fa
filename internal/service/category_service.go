package service

import (
	"context"
	"fmt"
	"strings"

	"taskflow/internal/cache"
	"taskflow/internal/events"
	"taskflow/internal/model"
	"taskflow/internal/repository"
)

// CategoryService manages categories and resolves category references on tasks and appointments.
type CategoryService struct {
	categoryRepo *repository.CategoryRepository
	cache        cache.Cache
	changes      changes
}

func NewCategoryService(categoryRepo *repository.CategoryRepository, c cache.Cache, pub events.Publisher) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		cache:        c,
		changes:      newChanges(c, pub, "category", CategoriesTag),
	}
}

func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	return readThrough(ctx, s.cache, CategoriesTag+":list", []string{CategoriesTag}, func() ([]model.Category, error) {
		return s.categoryRepo.List(ctx)
	})
}

func (s *CategoryService) Get(ctx context.Context, id uint) (*model.Category, error) {
	return readThrough(ctx, s.cache, s.changes.itemKey(id), s.changes.itemTags(id), func() (*model.Category, error) {
		category, err := s.categoryRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, ErrNotFound
		}
		return category, nil
	})
}

func (s *CategoryService) Create(ctx context.Context, input model.NewCategory) (*model.Category, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, input.Name, 0); err != nil {
		return nil, err
	}

	category := model.Category{
		Name:      strings.TrimSpace(input.Name),
		Color:     input.Color,
		Icon:      input.Icon,
		IsDefault: input.IsDefault,
	}
	if err := s.categoryRepo.Create(ctx, &category); err != nil {
		return nil, err
	}

	s.changes.record(ctx, events.Created, category.ID)
	return &category, nil
}

func (s *CategoryService) Update(ctx context.Context, id uint, update model.CategoryUpdate) (*model.Category, error) {
	if err := validateStruct(update); err != nil {
		return nil, err
	}
	if len(update.Columns()) == 0 {
		return nil, invalidField("", "no fields to update")
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if err := s.ensureNameFree(ctx, name, id); err != nil {
			return nil, err
		}
		update.Name = &name
	}

	category, err := s.categoryRepo.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}

	if update.Name != nil {
		s.changes.record(ctx, events.Updated, id, TasksTag, AppointmentsTag)
	} else {
		s.changes.record(ctx, events.Updated, id)
	}
	return category, nil
}

// Delete removes the category. Dependent tasks and appointments keep their
// label and lose the reference, so their cached reads are dropped too.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	deleted, err := s.categoryRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}

	s.changes.record(ctx, events.Deleted, id, TasksTag, AppointmentsTag)
	return nil
}

// EnsureDefaults seeds the default categories into an empty table.
func (s *CategoryService) EnsureDefaults(ctx context.Context) (int, error) {
	n, err := s.categoryRepo.EnsureDefaults(ctx, repository.DefaultCategories())
	if err != nil {
		return 0, err
	}
	if n > 0 && s.cache != nil {
		if err := s.cache.Invalidate(ctx, CategoriesTag); err != nil {
			return n, fmt.Errorf("invalidate categories: %w", err)
		}
	}
	return n, nil
}

func (s *CategoryService) ensureNameFree(ctx context.Context, name string, self uint) error {
	existing, err := s.categoryRepo.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return invalidField("name", "a category with this name already exists")
	}
	return nil
}

// resolve reconciles the free-text label with the category reference.
// A given id must exist and wins, its name becoming the label. Otherwise a
// label naming an existing category (ignoring case) is linked to it, and any
// other label is kept as typed with no reference.
func (s *CategoryService) resolve(ctx context.Context, label string, id *uint) (string, *uint, error) {
	if id != nil {
		category, err := s.categoryRepo.FindByID(ctx, *id)
		if err != nil {
			return "", nil, err
		}
		if category == nil {
			return "", nil, invalidField("categoryId", "category does not exist")
		}
		return category.Name, &category.ID, nil
	}

	label = strings.TrimSpace(label)
	if label == "" {
		return "", nil, nil
	}
	category, err := s.categoryRepo.FindByName(ctx, label)
	if err != nil {
		return "", nil, err
	}
	if category == nil {
		return label, nil, nil
	}
	return category.Name, &category.ID, nil
}
