package model

// PageMeta describes one page of a list response.
type PageMeta struct {
	CurrentPage  int  `json:"currentPage"`
	PageCount    int  `json:"pageCount"`
	TotalCount   int  `json:"totalCount"`
	IsFirstPage  bool `json:"isFirstPage"`
	IsLastPage   bool `json:"isLastPage"`
	PreviousPage *int `json:"previousPage"`
	NextPage     *int `json:"nextPage"`
}

// NewPageMeta computes paging metadata. page is 1-based; limit must be > 0.
func NewPageMeta(page, limit, total int) PageMeta {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	m := PageMeta{
		CurrentPage: page,
		PageCount:   pages,
		TotalCount:  total,
		IsFirstPage: page <= 1,
		IsLastPage:  page >= pages,
	}
	if page > 1 {
		prev := page - 1
		m.PreviousPage = &prev
	}
	if page < pages {
		next := page + 1
		m.NextPage = &next
	}
	return m
}

// Page is the envelope of list responses.
type Page[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}
