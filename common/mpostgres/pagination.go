package mpostgres

// Pagination encapsulates a page of results alongside the cursor needed to fetch the next one.
type Pagination struct {
	Items any    `json:"items"`
	Limit int    `json:"limit" example:"10"`
	Next  string `json:"next,omitempty"`
}

// SetItems sets the items slice carried by the pagination envelope.
func (p *Pagination) SetItems(items any) {
	p.Items = items
}
