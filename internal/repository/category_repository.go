package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"taskflow/internal/model"
)

// CategoryRepository manages task categories.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	if err := r.db.WithContext(ctx).Order("name ASC").Order("id ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uint) (*model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).First(&category, id).Error
	switch {
	case err == nil:
		return &category, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find category: %w", err)
	}
}

// FindByName matches the name case-insensitively.
func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*model.Category, error) {
	if name == "" {
		return nil, nil
	}

	var category model.Category
	db := r.db.WithContext(ctx)
	err := db.Where(lower(db, "name")+" = ?", strings.ToLower(name)).Order("id ASC").First(&category).Error
	switch {
	case err == nil:
		return &category, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find category: %w", err)
	}
}

func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// Update writes the set fields. A rename is copied to the label of every
// task and appointment linked to the category.
func (r *CategoryRepository) Update(ctx context.Context, id uint, update model.CategoryUpdate) (*model.Category, error) {
	cols := update.Columns()
	if len(cols) == 0 {
		return r.FindByID(ctx, id)
	}

	var found bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Category{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return res.Error
		}
		found = res.RowsAffected > 0
		if !found || update.Name == nil {
			return nil
		}
		if err := tx.Model(&model.Task{}).Where("category_id = ?", id).
			UpdateColumn("category", *update.Name).Error; err != nil {
			return err
		}
		return tx.Model(&model.Appointment{}).Where("category_id = ?", id).
			UpdateColumn("category", *update.Name).Error
	})
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	if !found {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

// Delete removes a category. Tasks and appointments that pointed at it keep
// their free-text label and lose the reference.
func (r *CategoryRepository) Delete(ctx context.Context, id uint) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Task{}).Where("category_id = ?", id).
			UpdateColumn("category_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Appointment{}).Where("category_id = ?", id).
			UpdateColumn("category_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	return deleted, nil
}

// EnsureDefaults inserts defaults when the table is empty and reports how many were created.
func (r *CategoryRepository) EnsureDefaults(ctx context.Context, defaults []model.Category) (int, error) {
	var count int64
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.Category{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	if count > 0 || len(defaults) == 0 {
		return 0, nil
	}

	rows := make([]model.Category, len(defaults))
	copy(rows, defaults)
	for i := range rows {
		rows[i].ID = 0
		rows[i].IsDefault = true
	}
	if err := db.Create(&rows).Error; err != nil {
		return 0, fmt.Errorf("seed categories: %w", err)
	}
	return len(rows), nil
}

// DefaultCategories are the categories a fresh planner starts with.
func DefaultCategories() []model.Category {
	return []model.Category{
		{Name: "Trabalho", Color: "#f59e0b", Icon: "briefcase"},
		{Name: "Pessoal", Color: "#3b82f6", Icon: "user"},
		{Name: "Saúde", Color: "#10b981", Icon: "heart"},
		{Name: "Estudo", Color: "#ef4444", Icon: "book"},
	}
}
