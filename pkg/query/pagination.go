package query

// PageRef points at an adjacent page with the same size.
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination reports whether neighbouring pages exist for a result set.
type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// Paginate computes next/prev existence from the total matching count.
func Paginate(p Page, total int64) Pagination {
	var out Pagination
	if p.Skip()+int64(p.Size) < total {
		out.Next = &PageRef{Page: p.Number + 1, Limit: p.Size}
	}
	if p.Skip() > 0 && total > 0 {
		out.Prev = &PageRef{Page: p.Number - 1, Limit: p.Size}
	}
	return out
}
