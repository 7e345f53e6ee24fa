package model

import (
	"encoding/json"
	"time"
)

// Appointment is a scheduled event with a start and end time.
type Appointment struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Title             string    `gorm:"not null" json:"title"`
	Description       *string   `json:"description"`
	Location          *string   `json:"location"`
	Category          string    `gorm:"not null;default:'';index" json:"category"`
	CategoryID        *uint     `gorm:"index" json:"categoryId"`
	CategoryRef       *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"-"`
	Priority          Priority  `gorm:"not null;default:medium;index" json:"priority"`
	Date              string    `gorm:"not null;index" json:"date"`
	StartTime         string    `gorm:"not null" json:"startTime"`
	EndTime           string    `gorm:"not null" json:"endTime"`
	ReminderEnabled   bool      `gorm:"not null;default:false" json:"reminderEnabled"`
	ReminderTime      *string   `json:"reminderTime"`
	IsRecurring       bool      `gorm:"not null;default:false" json:"isRecurring"`
	RecurrencePattern *string   `json:"recurrencePattern"`
	Tags              []string  `gorm:"type:text;serializer:json" json:"tags"`
	ReminderSentFor   *string   `json:"-"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// NewAppointment is the creatable shape of an appointment.
type NewAppointment struct {
	Title             string   `json:"title" yaml:"title" validate:"required,notblank,max=200"`
	Description       *string  `json:"description" yaml:"description,omitempty" validate:"omitempty,max=2000"`
	Location          *string  `json:"location" yaml:"location,omitempty" validate:"omitempty,max=200"`
	Category          string   `json:"category" yaml:"category,omitempty" validate:"max=50"`
	CategoryID        *uint    `json:"categoryId" yaml:"categoryId,omitempty"`
	Priority          Priority `json:"priority" yaml:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	Date              string   `json:"date" yaml:"date" validate:"required,isodate"`
	StartTime         string   `json:"startTime" yaml:"startTime" validate:"required,clock"`
	EndTime           string   `json:"endTime" yaml:"endTime" validate:"required,clock"`
	ReminderEnabled   bool     `json:"reminderEnabled" yaml:"reminderEnabled,omitempty"`
	ReminderTime      *string  `json:"reminderTime" yaml:"reminderTime,omitempty" validate:"omitempty,oneof=15min 1hour 1day"`
	IsRecurring       bool     `json:"isRecurring" yaml:"isRecurring,omitempty"`
	RecurrencePattern *string  `json:"recurrencePattern" yaml:"recurrencePattern,omitempty" validate:"omitempty,oneof=daily weekly monthly"`
	Tags              []string `json:"tags" yaml:"tags,omitempty" validate:"omitempty,max=20,dive,notblank,max=30"`
}

// Appointment builds the row to insert, applying column defaults.
func (n NewAppointment) Appointment() Appointment {
	appt := Appointment{
		Title:             n.Title,
		Description:       n.Description,
		Location:          n.Location,
		Category:          n.Category,
		CategoryID:        n.CategoryID,
		Priority:          n.Priority,
		Date:              n.Date,
		StartTime:         n.StartTime,
		EndTime:           n.EndTime,
		ReminderEnabled:   n.ReminderEnabled,
		ReminderTime:      n.ReminderTime,
		IsRecurring:       n.IsRecurring,
		RecurrencePattern: n.RecurrencePattern,
		Tags:              n.Tags,
	}
	if appt.Priority == "" {
		appt.Priority = PriorityMedium
	}
	if appt.Tags == nil {
		appt.Tags = []string{}
	}
	return appt
}

// AppointmentUpdate is the field update set accepted by PATCH.
type AppointmentUpdate struct {
	Title             *string   `json:"title,omitempty" validate:"omitempty,notblank,max=200"`
	Description       *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Location          *string   `json:"location,omitempty" validate:"omitempty,max=200"`
	Category          *string   `json:"category,omitempty" validate:"omitempty,max=50"`
	CategoryID        *uint     `json:"categoryId,omitempty"`
	Priority          *Priority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	Date              *string   `json:"date,omitempty" validate:"omitempty,isodate"`
	StartTime         *string   `json:"startTime,omitempty" validate:"omitempty,clock"`
	EndTime           *string   `json:"endTime,omitempty" validate:"omitempty,clock"`
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

var appointmentUpdateNullable = []string{"description", "location", "reminderTime", "recurrencePattern"}

// UnmarshalJSON records the nullable fields sent as an explicit null in Clear.
func (u *AppointmentUpdate) UnmarshalJSON(data []byte) error {
	type plain AppointmentUpdate
	if err := json.Unmarshal(data, (*plain)(u)); err != nil {
		return err
	}
	keys, err := nullKeys(data, appointmentUpdateNullable...)
	if err != nil {
		return err
	}
	u.Clear = keys
	return nil
}

// MarshalJSON omits unset fields and writes the cleared ones as null.
func (u AppointmentUpdate) MarshalJSON() ([]byte, error) {
	type plain AppointmentUpdate
	data, err := json.Marshal(plain(u))
	if err != nil {
		return nil, err
	}
	return withNulls(data, u.Clear)
}

// Columns maps the set fields to their column names.
func (u AppointmentUpdate) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	clearColumns(cols, u.Clear, appointmentUpdateNullable)
	if u.Title != nil {
		cols["title"] = *u.Title
	}
	if u.Description != nil {
		cols["description"] = *u.Description
	}
	if u.Location != nil {
		cols["location"] = *u.Location
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
	if u.StartTime != nil {
		cols["start_time"] = *u.StartTime
	}
	if u.EndTime != nil {
		cols["end_time"] = *u.EndTime
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
	if u.Date != nil || u.StartTime != nil || u.ReminderEnabled != nil || u.ReminderTime != nil ||
		u.IsRecurring != nil || u.RecurrencePattern != nil ||
		hasKey(u.Clear, "reminderTime") || hasKey(u.Clear, "recurrencePattern") {
		cols["reminder_sent_for"] = nil
	}
	return cols
}

// AppointmentFilter is the filter set accepted by appointment list operations.
type AppointmentFilter struct {
	Category   string    `json:"category" validate:"max=50"`
	CategoryID *uint     `json:"categoryId"`
	Priority   Priority  `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	DateFrom   string    `json:"dateFrom" validate:"omitempty,isodate"`
	DateTo     string    `json:"dateTo" validate:"omitempty,isodate"`
	Tags       []string  `json:"tags" validate:"dive,notblank"`
	SortBy     SortField `json:"sortBy" validate:"omitempty,oneof=date priority title created"`
	SortOrder  SortOrder `json:"sortOrder" validate:"omitempty,oneof=asc desc"`
}
