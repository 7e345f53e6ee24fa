package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"taskflow/internal/model"
)

// parseID reads the :id route parameter. Ids start at 1.
func parseID(c *fiber.Ctx) (uint, error) {
	raw := c.Params("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

// Syntax errors (a non-numeric categoryId, a non-boolean completed) are
// reported here. Unknown enum values go through service validation.
func parseTaskFilter(c *fiber.Ctx) (model.TaskFilter, error) {
	var filter model.TaskFilter
	if err := parseCommon(c, &filter.Category, &filter.CategoryID, &filter.Priority, &filter.DateFrom,
		&filter.DateTo, &filter.Tags, &filter.SortBy, &filter.SortOrder); err != nil {
		return filter, err
	}

	if raw := c.Query("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, fmt.Errorf("completed must be true or false")
		}
		filter.Completed = &completed
	}
	return filter, nil
}

func parseAppointmentFilter(c *fiber.Ctx) (model.AppointmentFilter, error) {
	var filter model.AppointmentFilter
	err := parseCommon(c, &filter.Category, &filter.CategoryID, &filter.Priority, &filter.DateFrom,
		&filter.DateTo, &filter.Tags, &filter.SortBy, &filter.SortOrder)
	return filter, err
}

func parseCommon(c *fiber.Ctx, category *string, categoryID **uint, priority *model.Priority,
	from, to *string, tags *[]string, by *model.SortField, order *model.SortOrder) error {
	*category = c.Query("category")
	*priority = model.Priority(c.Query("priority"))
	*from = c.Query("dateFrom")
	*to = c.Query("dateTo")
	*by = model.SortField(c.Query("sortBy"))
	*order = model.SortOrder(c.Query("sortOrder"))

	if raw := c.Query("categoryId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("categoryId must be a positive number")
		}
		v := uint(id)
		*categoryID = &v
	}

	for _, tag := range strings.Split(c.Query("tags"), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			*tags = append(*tags, tag)
		}
	}
	return nil
}
