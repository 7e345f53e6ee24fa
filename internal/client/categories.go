package client

import (
	"context"
	"net/http"

	"taskflow/internal/model"
)

const (
	categoriesPath = "/api/categories"
	categoriesTag  = "categories"
)

func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	return get[[]model.Category](ctx, c, categoriesPath, nil, categoriesTag)
}

func (c *Client) CreateCategory(ctx context.Context, category model.NewCategory) (*model.Category, error) {
	return mutate[*model.Category](ctx, c, http.MethodPost, categoriesPath, category, categoriesTag)
}

// UpdateCategory also drops cached tasks and appointments, whose labels follow a rename.
func (c *Client) UpdateCategory(ctx context.Context, id uint, update model.CategoryUpdate) (*model.Category, error) {
	return mutate[*model.Category](ctx, c, http.MethodPatch, idPath(categoriesPath, id), update,
		categoriesTag, tasksTag, appointmentsTag)
}

// DeleteCategory also drops cached tasks and appointments, which lose their reference.
func (c *Client) DeleteCategory(ctx context.Context, id uint) error {
	_, err := mutate[map[string]bool](ctx, c, http.MethodDelete, idPath(categoriesPath, id), nil,
		categoriesTag, tasksTag, appointmentsTag)
	return err
}
