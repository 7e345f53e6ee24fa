package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"taskflow/internal/model"
)

const likeEscape = "!"

var likeReplacer = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern builds a LIKE pattern matching s anywhere, with wildcards in s taken literally.
func containsPattern(s string) string {
	return "%" + likeReplacer.Replace(s) + "%"
}

// priorityRank orders priorities by urgency instead of alphabetically.
const priorityRank = "CASE priority WHEN 'low' THEN 0 WHEN 'medium' THEN 1 WHEN 'high' THEN 2 WHEN 'urgent' THEN 3 ELSE 4 END"

// commonFilter carries the predicates shared by tasks and appointments.
type commonFilter struct {
	category   string
	categoryID *uint
	priority   model.Priority
	dateFrom   string
	dateTo     string
	tags       []string
}

func applyFilter(db *gorm.DB, f commonFilter) *gorm.DB {
	if f.category != "" {
		db = db.Where("category = ?", f.category)
	}
	if f.categoryID != nil {
		db = db.Where("category_id = ?", *f.categoryID)
	}
	if f.priority != "" {
		db = db.Where("priority = ?", f.priority)
	}
	// ISO dates sort correctly as strings
	if f.dateFrom != "" {
		db = db.Where("date >= ?", f.dateFrom)
	}
	if f.dateTo != "" {
		db = db.Where("date <= ?", f.dateTo)
	}
	for _, tag := range f.tags {
		db = db.Where(hasTag(db), tag)
	}
	return db
}

// hasTag is an exact, case-sensitive membership test on the JSON tags column.
func hasTag(db *gorm.DB) string {
	if db.Dialector.Name() == "sqlite" {
		return "EXISTS (SELECT 1 FROM json_each(tags) WHERE json_each.value = ?)"
	}
	return "jsonb_exists(tags::jsonb, ?)"
}

// applySort orders by the requested column with id as tie-break in the same
// direction. Without a sort field the list is newest first.
func applySort(db *gorm.DB, by model.SortField, order model.SortOrder) *gorm.DB {
	dir := "DESC"
	if by != "" && order == model.SortAsc {
		dir = "ASC"
	}

	var column string
	switch by {
	case model.SortByDate:
		column = "date"
	case model.SortByPriority:
		column = priorityRank
	case model.SortByTitle:
		column = "title"
	default:
		column = "created_at"
	}
	return db.Order(fmt.Sprintf("%s %s", column, dir)).Order(fmt.Sprintf("id %s", dir))
}

// lower folds a non-null text expression to lower case in SQL, matching
// strings.ToLower on the Go side.
func lower(db *gorm.DB, expr string) string {
	if db.Dialector.Name() == "sqlite" {
		return sqliteLower + "(" + expr + ")"
	}
	return "LOWER(" + expr + ")"
}

// applySearch matches text case-insensitively against title, description and category.
func applySearch(db *gorm.DB, text string) *gorm.DB {
	pattern := containsPattern(strings.ToLower(text))
	like := " LIKE ? ESCAPE '" + likeEscape + "'"
	return db.Where(
		lower(db, "title")+like+" OR "+lower(db, "COALESCE(description, '')")+like+" OR "+lower(db, "category")+like,
		pattern, pattern, pattern,
	)
}
