package domain

import "time"

// Order statuses.
const (
	OrderNew       = "new"
	OrderPreparing = "preparing"
	OrderShipped   = "shipped"
	OrderCancelled = "cancelled"
	OrderRejected  = "rejected"
	OrderDraft     = "draft"
)

// Shipping services.
const (
	ShippingStandard = "standard"
	ShippingPriority = "priority"
	ShippingExpress  = "express"
)

// Price types for order items.
const (
	PriceWholesale = "wholesale"
	PriceRetail    = "retail"
)

// OrderItem is a line item embedded in an order. Product name and price are
// denormalized at order time so later product edits don't rewrite history.
type OrderItem struct {
	ProductID    string  `json:"productId"`
	ProductName  string  `json:"productName"`
	ProductPrice float64 `json:"productPrice"`
	PriceType    string  `json:"priceType"`
	Quantity     int     `json:"quantity"`
	Subtotal     float64 `json:"subtotal"`
}

// Order is a customer order owned by a single back-office user.
type Order struct {
	ID              string      `json:"id"`
	OrderNumber     string      `json:"orderNumber"`
	Status          string      `json:"status"`
	Items           int         `json:"items"`
	CustomerName    string      `json:"customerName"`
	CustomerEmail   string      `json:"customerEmail,omitempty"`
	CustomerPhone   string      `json:"customerPhone,omitempty"`
	ShippingService string      `json:"shippingService"`
	ShippingAddress string      `json:"shippingAddress,omitempty"`
	TrackingCode    string      `json:"trackingCode"`
	Total           float64     `json:"total"`
	OrderItems      []OrderItem `json:"orderItems"`
	Notes           string      `json:"notes,omitempty"`
	OwnerID         string      `json:"-"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// OrderFilters narrows order listings.
type OrderFilters struct {
	Status string
	Search string
}

// OrderStats is the per-owner order aggregate used by the dashboard.
type OrderStats struct {
	TotalOrders   int     `json:"totalOrders"`
	PendingOrders int     `json:"pendingOrders"`
	TotalRevenue  float64 `json:"totalRevenue"`
	OrdersTrend   float64 `json:"ordersTrend"`
	RevenueTrend  float64 `json:"revenueTrend"`
}

// DashboardStats is the full dashboard payload: the order aggregate plus the
// owner's catalog size.
type DashboardStats struct {
	OrderStats
	TotalProducts int `json:"totalProducts"`
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderNew, OrderPreparing, OrderShipped, OrderCancelled, OrderRejected, OrderDraft:
		return true
	}
	return false
}
