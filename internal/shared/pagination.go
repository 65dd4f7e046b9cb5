package shared

// Page is the JSON envelope for paginated listings.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPage computes pagination metadata around items.
func NewPage[T any](items []T, page, perPage, total int) Page[T] {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	if items == nil {
		items = []T{}
	}
	totalPages := (total + perPage - 1) / perPage
	return Page[T]{Items: items, Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Offset returns the SQL offset for a 1-based page.
func Offset(page, perPage int) int {
	if page <= 1 {
		return 0
	}
	return (page - 1) * perPage
}
