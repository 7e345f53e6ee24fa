package model

import (
	"net/url"
	"strconv"
	"strings"
)

// Query renders the filter as URL query parameters. url.Values encodes keys
// in sorted order, which makes the result usable as a cache key.
func (f TaskFilter) Query() url.Values {
	q := commonQuery(f.Category, f.CategoryID, f.Priority, f.DateFrom, f.DateTo, f.Tags, f.SortBy, f.SortOrder)
	if f.Completed != nil {
		q.Set("completed", strconv.FormatBool(*f.Completed))
	}
	return q
}

func (f AppointmentFilter) Query() url.Values {
	return commonQuery(f.Category, f.CategoryID, f.Priority, f.DateFrom, f.DateTo, f.Tags, f.SortBy, f.SortOrder)
}

func commonQuery(category string, categoryID *uint, priority Priority, from, to string, tags []string, by SortField, order SortOrder) url.Values {
	q := url.Values{}
	setIf := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}
	setIf("category", category)
	if categoryID != nil {
		q.Set("categoryId", strconv.FormatUint(uint64(*categoryID), 10))
	}
	setIf("priority", string(priority))
	setIf("dateFrom", from)
	setIf("dateTo", to)
	setIf("tags", strings.Join(tags, ","))
	setIf("sortBy", string(by))
	setIf("sortOrder", string(order))
	return q
}
