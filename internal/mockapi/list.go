package mockapi

import (
	"sort"
	"strings"
	"time"

	"github.com/m-kr/cms-nano/pkg/model"
)

// SearchPatterns filters patterns whose name contains query, ignoring case,
// and orders them by sortKey. A leading "-" sorts descending. Unknown keys
// fall back to name order. Ties are broken by id so paging is stable.
func SearchPatterns(patterns []model.ComponentPattern, query, sortKey string) []model.ComponentPattern {
	query = strings.ToLower(strings.TrimSpace(query))
	matches := make([]model.ComponentPattern, 0, len(patterns))
	for _, p := range patterns {
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		matches = append(matches, p)
	}

	key, desc := parseSort(sortKey)
	less := patternLess(key)
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if desc {
			a, b = b, a
		}
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return matches[i].ID < matches[j].ID
	})
	return matches
}

// SearchPages filters pages by name the same way SearchPatterns does and
// keeps them in name order, descending for a "-name" sort.
func SearchPages(pages []model.PageSummary, query, sortKey string) []model.PageSummary {
	query = strings.ToLower(strings.TrimSpace(query))
	matches := make([]model.PageSummary, 0, len(pages))
	for _, p := range pages {
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		matches = append(matches, p)
	}
	_, desc := parseSort(sortKey)
	sort.SliceStable(matches, func(i, j int) bool {
		if desc {
			return matches[i].Name > matches[j].Name
		}
		return matches[i].Name < matches[j].Name
	})
	return matches
}

// Paginate cuts one page out of items. Page and limit are clamped to sane
// values; a page past the end yields an empty Data slice.
func Paginate[T any](items []T, query model.ListQuery, opts Options) model.ListPage[T] {
	limit := clampLimit(query.Limit, opts)
	page := query.Page
	if page < 1 {
		page = 1
	}

	out := model.ListPage[T]{
		Data:         []T{},
		CurrentPage:  page,
		TotalPages:   model.TotalPages(len(items), limit),
		ItemsPerPage: limit,
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return out
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	out.Data = append(out.Data, items[start:end]...)
	return out
}

func clampLimit(limit int, opts Options) int {
	if limit <= 0 {
		return opts.DefaultLimit
	}
	if limit > opts.MaxLimit {
		return opts.MaxLimit
	}
	return limit
}

func parseSort(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "-") {
		return strings.TrimPrefix(raw, "-"), true
	}
	return raw, false
}

func patternLess(key string) func(a, b model.ComponentPattern) bool {
	switch key {
	case "label":
		return func(a, b model.ComponentPattern) bool { return a.Label < b.Label }
	case "createdAt":
		return func(a, b model.ComponentPattern) bool { return timeBefore(a.CreatedAt, b.CreatedAt) }
	case "updatedAt":
		return func(a, b model.ComponentPattern) bool { return timeBefore(a.UpdatedAt, b.UpdatedAt) }
	default:
		return func(a, b model.ComponentPattern) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	}
}

// timeBefore orders missing stamps first.
func timeBefore(a, b *time.Time) bool {
	switch {
	case a == nil:
		return b != nil
	case b == nil:
		return false
	default:
		return a.Before(*b)
	}
}
