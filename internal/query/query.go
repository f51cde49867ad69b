package query

import (
	"sort"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Predicate[T any] func(T) bool

// Filter keeps items matching every predicate, preserving relative order.
func Filter[T any](items []T, preds ...Predicate[T]) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		ok := true
		for _, p := range preds {
			if !p(it) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, it)
		}
	}
	return out
}

// SortBy stable-sorts a copy of items. A nil less means the sort key is
// unknown and the incoming order is kept.
func SortBy[T any](items []T, less func(a, b T) bool, desc bool) []T {
	out := make([]T, len(items))
	copy(out, items)
	if less == nil {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

type Meta struct {
	Page    int   `json:"page"`
	Size    int   `json:"size"`
	Total   int64 `json:"total"`
	Pages   int64 `json:"total_pages"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

// Clamp floors page to 1 and clamps size to [1,MaxPageSize]: a size
// below 1 falls back to the default, an oversized one is capped.
func Clamp(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

// Paginate windows items to the requested page.
func Paginate[T any](items []T, page, size int) ([]T, Meta) {
	page, size = Clamp(page, size)

	total := int64(len(items))
	meta := Meta{
		Page:    page,
		Size:    size,
		Total:   total,
		Pages:   (total + int64(size) - 1) / int64(size),
		HasPrev: page > 1,
	}

	offset := (page - 1) * size
	if offset >= len(items) {
		return []T{}, meta
	}
	end := offset + size
	if end > len(items) {
		end = len(items)
	}
	meta.HasNext = int64(end) < total
	return items[offset:end], meta
}

// ContainsFold reports a case-insensitive substring match.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
