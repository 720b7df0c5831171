package domain

import "time"

// Product statuses.
const (
	ProductActive   = "active"
	ProductInactive = "inactive"
)

// Product is a catalog item owned by a single back-office user. All reads and
// writes are scoped by OwnerID.
type Product struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	WholesalePrice float64   `json:"wholesalePrice,omitempty"`
	RetailPrice    float64   `json:"retailPrice,omitempty"`
	Stock          int       `json:"stock"`
	Category       string    `json:"category"`
	Status         string    `json:"status"`
	Image          string    `json:"image,omitempty"`
	Description    string    `json:"description,omitempty"`
	Weight         float64   `json:"weight,omitempty"`
	Dimensions     string    `json:"dimensions,omitempty"`
	OwnerID        string    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ProductStats summarizes an owner's catalog.
type ProductStats struct {
	TotalProducts int `json:"totalProducts"`
}

// ProductFilters narrows product listings. Zero values (or "all") disable the
// corresponding filter.
type ProductFilters struct {
	Category string
	Status   string
	Search   string
}
