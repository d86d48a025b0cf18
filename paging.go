package gridify

// NewPage normalizes a one-based page number and page size into a skip/take
// window. Non-positive pages become 1; non-positive sizes become the
// configured default.
func NewPage(page, pageSize int, cfg Config) Page {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = cfg.pageSize()
	}
	return Page{Skip: (page - 1) * pageSize, Take: pageSize}
}

func (p *Page) validate() {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Take < 0 {
		p.Take = 0
	}
}

// ApplyPaging returns the items of the requested page
func ApplyPaging[T any](items []T, page, pageSize int, cfg Config) []T {
	return pageSlice(items, NewPage(page, pageSize, cfg))
}

func pageSlice[T any](items []T, p Page) []T {
	p.validate()
	if p.Skip >= len(items) {
		return []T{}
	}
	end := len(items)
	if p.Take > 0 && p.Skip+p.Take < end {
		end = p.Skip + p.Take
	}
	return items[p.Skip:end]
}
