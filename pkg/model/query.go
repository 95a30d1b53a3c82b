package model

import (
	"net/url"
	"strconv"
	"strings"
)

// ListQuery holds the parameters of a paginated listing request.
type ListQuery struct {
	Page   int
	Limit  int
	Search string
	Sort   string
}

// Values encodes the query the way list endpoints expect it. Zero values are
// omitted so the server applies its own defaults.
func (q ListQuery) Values() url.Values {
	values := url.Values{}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		values.Set("search", search)
	}
	if q.Sort != "" {
		values.Set("sort", q.Sort)
	}
	return values
}

// ParseListQuery reads a ListQuery from request values. Malformed numbers are
// treated as absent.
func ParseListQuery(values url.Values) ListQuery {
	return ListQuery{
		Page:   atoiOrZero(values.Get("page")),
		Limit:  atoiOrZero(values.Get("limit")),
		Search: strings.TrimSpace(values.Get("search")),
		Sort:   strings.TrimSpace(values.Get("sort")),
	}
}

// TotalPages returns the number of pages needed for total items, never less
// than one.
func TotalPages(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

func atoiOrZero(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
