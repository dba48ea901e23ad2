package entity

const DefaultPerPage = 12

type Pagination struct {
	TotalRecords int `json:"total_records"`
	TotalPages   int `json:"total_pages"`
	CurrentPage  int `json:"current_page"`
	PerPage      int `json:"per_page"`
}

func NewPagination(perPage int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return Pagination{TotalPages: 1, CurrentPage: 1, PerPage: perPage}
}

// Page é o envelope paginado devolvido pelo backend.
type Page[T any] struct {
	Data []T `json:"data"`
	Pagination
}

// Normalized fills the invariants the backend sometimes leaves out
// (total_pages >= 1, current_page >= 1).
func (p Page[T]) Normalized() Page[T] {
	if p.TotalPages < 1 {
		p.TotalPages = 1
	}
	if p.CurrentPage < 1 {
		p.CurrentPage = 1
	}
	if p.TotalRecords < 0 {
		p.TotalRecords = 0
	}
	if p.Data == nil {
		p.Data = []T{}
	}
	return p
}

type ContactPage = Page[Contact]
