package ledger

// Paginator slices the capped date window into fixed-size pages. Pages are
// 1-based; requesting a page outside [1, TotalPages] leaves the current page
// unchanged.
type Paginator struct {
	PageSize   int
	TotalItems int
	TotalPages int
	Page       int
}

func NewPaginator(totalItems, pageSize int) *Paginator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	totalPages := (totalItems + pageSize - 1) / pageSize
	return &Paginator{
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
		Page:       1,
	}
}

// SetPage moves to the requested page. Out-of-range requests are no-ops.
func (p *Paginator) SetPage(page int) {
	if page < 1 || page > p.TotalPages {
		return
	}
	p.Page = page
}

// Slice returns the items on the current page.
func (p *Paginator) Slice(items []string) []string {
	start := (p.Page - 1) * p.PageSize
	if start >= len(items) {
		return nil
	}
	end := start + p.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
