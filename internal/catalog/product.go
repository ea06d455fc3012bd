package catalog

import "time"

// Product is the catalog shape consumed when adding to the cart.
type Product struct {
	ID          int64     `json:"id"`
	CategoryID  int64     `json:"categoryId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UnitPrice   float64   `json:"unitPrice"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Page is one page of a product query.
type Page struct {
	Products      []*Product `json:"products"`
	PageNumber    int        `json:"pageNumber"`
	PageSize      int        `json:"pageSize"`
	TotalElements int64      `json:"totalElements"`
}
