// Package pagination slices ordered result sets into fixed-size pages.
package pagination

import "strconv"

// PageSize is the number of items per page on every listing
const PageSize = 10

// Page is one slice of an ordered result set plus the metadata needed to
// render previous/next navigation.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Number     int  `json:"number"`
	TotalPages int  `json:"total_pages"`
	TotalItems int  `json:"total_items"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
	PrevNumber int  `json:"prev_number,omitempty"`
	NextNumber int  `json:"next_number,omitempty"`
}

// ParsePage interprets an untrusted page query parameter. Absent or
// non-numeric values fall back to the first page; the bounds are clamped
// later against the actual result set.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Paginate returns the requested page of items. Out-of-range requests
// degrade to the nearest valid page instead of failing: below the first
// page yields page 1, beyond the last yields the last page. An empty set
// has exactly one empty page.
func Paginate[T any](items []T, number int) Page[T] {
	total := len(items)
	totalPages := (total + PageSize - 1) / PageSize
	if totalPages == 0 {
		totalPages = 1
	}

	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	start := (number - 1) * PageSize
	end := start + PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	page := Page[T]{
		Items:      items[start:end],
		Number:     number,
		TotalPages: totalPages,
		TotalItems: total,
		HasPrev:    number > 1,
		HasNext:    number < totalPages,
	}
	if page.HasPrev {
		page.PrevNumber = number - 1
	}
	if page.HasNext {
		page.NextNumber = number + 1
	}
	return page
}
