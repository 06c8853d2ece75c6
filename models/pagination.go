package models

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageBounds clamps page / page_size query values and converts them to a
// LIMIT/OFFSET pair. Page numbering is 1-based.
func PageBounds(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return pageSize, (page - 1) * pageSize
}
