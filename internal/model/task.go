package model

import (
	"encoding/json"
	"time"
)

// Task represents a single to-do item in the planner.
type Task struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Title             string    `gorm:"not null" json:"title"`
	Description       *string   `json:"description"`
	Category          string    `gorm:"not null;default:'';index" json:"category"`
	CategoryID        *uint     `gorm:"index" json:"categoryId"`
	CategoryRef       *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"-"`
	Priority          Priority  `gorm:"not null;default:medium;index" json:"priority"`
	Date              string    `gorm:"not null;index" json:"date"`
	Time              string    `gorm:"not null" json:"time"`
	Completed         bool      `gorm:"not null;default:false" json:"completed"`
	ReminderEnabled   bool      `gorm:"not null;default:false" json:"reminderEnabled"`
	ReminderTime      *string   `json:"reminderTime"`
	IsRecurring       bool      `gorm:"not null;default:false" json:"isRecurring"`
	RecurrencePattern *string   `json:"recurrencePattern"`
	Tags              []string  `gorm:"type:text;serializer:json" json:"tags"`
	ReminderSentFor   *string   `json:"-"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// NewTask is the creatable shape of a task.
type NewTask struct {
	Title             string   `json:"title" yaml:"title" validate:"required,notblank,max=200"`
	Description       *string  `json:"description" yaml:"description,omitempty" validate:"omitempty,max=2000"`
	Category          string   `json:"category" yaml:"category,omitempty" validate:"max=50"`
	CategoryID        *uint    `json:"categoryId" yaml:"categoryId,omitempty"`
	Priority          Priority `json:"priority" yaml:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	Date              string   `json:"date" yaml:"date" validate:"required,isodate"`
	Time              string   `json:"time" yaml:"time" validate:"required,clock"`
	Completed         bool     `json:"completed" yaml:"completed,omitempty"`
	ReminderEnabled   bool     `json:"reminderEnabled" yaml:"reminderEnabled,omitempty"`
	ReminderTime      *string  `json:"reminderTime" yaml:"reminderTime,omitempty" validate:"omitempty,oneof=15min 1hour 1day"`
	IsRecurring       bool     `json:"isRecurring" yaml:"isRecurring,omitempty"`
	RecurrencePattern *string  `json:"recurrencePattern" yaml:"recurrencePattern,omitempty" validate:"omitempty,oneof=daily weekly monthly"`
	Tags              []string `json:"tags" yaml:"tags,omitempty" validate:"omitempty,max=20,dive,notblank,max=30"`
}

// Task builds the row to insert, applying column defaults.
func (n NewTask) Task() Task {
	task := Task{
		Title:             n.Title,
		Description:       n.Description,
		Category:          n.Category,
		CategoryID:        n.CategoryID,
		Priority:          n.Priority,
		Date:              n.Date,
		Time:              n.Time,
		Completed:         n.Completed,
		ReminderEnabled:   n.ReminderEnabled,
		ReminderTime:      n.ReminderTime,
		IsRecurring:       n.IsRecurring,
		RecurrencePattern: n.RecurrencePattern,
		Tags:              n.Tags,
	}
	if task.Priority == "" {
		task.Priority = PriorityMedium
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}
	return task
}

// TaskUpdate is the field update set accepted by PATCH. Nil fields are left
// untouched unless named in Clear.
type TaskUpdate struct {
	Title             *string   `json:"title,omitempty" validate:"omitempty,notblank,max=200"`
	Description       *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category          *string   `json:"category,omitempty" validate:"omitempty,max=50"`
	CategoryID        *uint     `json:"categoryId,omitempty"`
	Priority          *Priority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	Date              *string   `json:"date,omitempty" validate:"omitempty,isodate"`
	Time              *string   `json:"time,omitempty" validate:"omitempty,clock"`
	Completed         *bool     `json:"completed,omitempty"`
	ReminderEnabled   *bool     `json:"reminderEnabled,omitempty"`
	ReminderTime      *string   `json:"reminderTime,omitempty" validate:"omitempty,oneof=15min 1hour 1day"`
	IsRecurring       *bool     `json:"isRecurring,omitempty"`
	RecurrencePattern *string   `json:"recurrencePattern,omitempty" validate:"omitempty,oneof=daily weekly monthly"`
	Tags              *[]string `json:"tags,omitempty" validate:"omitempty,max=20,dive,notblank,max=30"`

	// Clear names nullable fields to set to null, by JSON name. Decoding
	// fills it from fields sent as an explicit null.
	Clear []string `json:"-"`

	// DetachCategory clears category_id when the label no longer names a category.
	DetachCategory bool `json:"-"`
}

var taskUpdateNullable = []string{"description", "reminderTime", "recurrencePattern"}

// UnmarshalJSON records the nullable fields sent as an explicit null in Clear.
func (u *TaskUpdate) UnmarshalJSON(data []byte) error {
	type plain TaskUpdate
	if err := json.Unmarshal(data, (*plain)(u)); err != nil {
		return err
	}
	keys, err := nullKeys(data, taskUpdateNullable...)
	if err != nil {
		return err
	}
	u.Clear = keys
	return nil
}

// MarshalJSON omits unset fields and writes the cleared ones as null.
func (u TaskUpdate) MarshalJSON() ([]byte, error) {
	type plain TaskUpdate
	data, err := json.Marshal(plain(u))
	if err != nil {
		return nil, err
	}
	return withNulls(data, u.Clear)
}

// Columns maps the set fields to their column names. Changing anything that
// moves the next occurrence or its reminder rearms the reminder.
func (u TaskUpdate) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	clearColumns(cols, u.Clear, taskUpdateNullable)
	if u.Title != nil {
		cols["title"] = *u.Title
	}
	if u.Description != nil {
		cols["description"] = *u.Description
	}
	if u.Category != nil {
		cols["category"] = *u.Category
	}
	if u.CategoryID != nil {
		cols["category_id"] = *u.CategoryID
	} else if u.DetachCategory {
		cols["category_id"] = nil
	}
	if u.Priority != nil {
		cols["priority"] = *u.Priority
	}
	if u.Date != nil {
		cols["date"] = *u.Date
	}
	if u.Time != nil {
		cols["time"] = *u.Time
	}
	if u.Completed != nil {
		cols["completed"] = *u.Completed
	}
	if u.ReminderEnabled != nil {
		cols["reminder_enabled"] = *u.ReminderEnabled
	}
	if u.ReminderTime != nil {
		cols["reminder_time"] = *u.ReminderTime
	}
	if u.IsRecurring != nil {
		cols["is_recurring"] = *u.IsRecurring
	}
	if u.RecurrencePattern != nil {
		cols["recurrence_pattern"] = *u.RecurrencePattern
	}
	if u.Tags != nil {
		cols["tags"] = EncodeTags(*u.Tags)
	}
	if u.Date != nil || u.Time != nil || u.ReminderEnabled != nil || u.ReminderTime != nil ||
		u.IsRecurring != nil || u.RecurrencePattern != nil ||
		hasKey(u.Clear, "reminderTime") || hasKey(u.Clear, "recurrencePattern") {
		cols["reminder_sent_for"] = nil
	}
	return cols
}

// TaskFilter is the filter set accepted by task list operations.
type TaskFilter struct {
	Category   string    `json:"category" validate:"max=50"`
	CategoryID *uint     `json:"categoryId"`
	Priority   Priority  `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Completed  *bool     `json:"completed"`
	DateFrom   string    `json:"dateFrom" validate:"omitempty,isodate"`
	DateTo     string    `json:"dateTo" validate:"omitempty,isodate"`
	Tags       []string  `json:"tags" validate:"dive,notblank"`
	SortBy     SortField `json:"sortBy" validate:"omitempty,oneof=date priority title created"`
	SortOrder  SortOrder `json:"sortOrder" validate:"omitempty,oneof=asc desc"`
}
