package model

import "time"

// Category groups tasks and appointments by area (work, health, study, etc.).
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;index" json:"name"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	IsDefault bool      `gorm:"not null;default:false" json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewCategory is the creatable shape of a category.
type NewCategory struct {
	Name      string `json:"name" validate:"required,notblank,max=50"`
	Color     string `json:"color" validate:"omitempty,hexcolor"`
	Icon      string `json:"icon" validate:"omitempty,max=50"`
	IsDefault bool   `json:"isDefault"`
}

// CategoryUpdate holds the category fields a PATCH may change.
type CategoryUpdate struct {
	Name      *string `json:"name" validate:"omitempty,notblank,max=50"`
	Color     *string `json:"color" validate:"omitempty,hexcolor"`
	Icon      *string `json:"icon" validate:"omitempty,max=50"`
	IsDefault *bool   `json:"isDefault"`
}

// Columns maps the set fields to their column names.
func (u CategoryUpdate) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.Color != nil {
		cols["color"] = *u.Color
	}
	if u.Icon != nil {
		cols["icon"] = *u.Icon
	}
	if u.IsDefault != nil {
		cols["is_default"] = *u.IsDefault
	}
	return cols
}
