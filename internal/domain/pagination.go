package domain

// PaginationParams holds offset-based pagination parameters for list queries.
type PaginationParams struct {
	Page    int
	PerPage int
}

// Offset returns the row offset for the current page (page numbers start at 1).
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}
