// Package models holds the data shapes exchanged between the planner,
// the catalog client and the orchestrator. Every value here lives for a
// single message-handling invocation; nothing is persisted.
package models

// Plan actions.
const (
	ActionNone           = "none"
	ActionSearchProducts = "search_products"
)

// Plan is the structured decision produced by the intent planner for one
// inbound message. Reply is always populated, even on planner failure.
type Plan struct {
	Reply    string    `json:"reply" validate:"required"`
	Action   string    `json:"action" validate:"required,oneof=none search_products"`
	Criteria *Criteria `json:"criteria,omitempty"`
}

// Criteria is a sparse product filter; an absent field means "no constraint".
// Prices are in the store's native currency unit, not the display currency.
type Criteria struct {
	Query      string          `json:"query,omitempty"`
	Category   string          `json:"category,omitempty"`
	Brand      string          `json:"brand,omitempty"`
	MinPrice   float64         `json:"min_price,omitempty"`
	MaxPrice   float64         `json:"max_price,omitempty"`
	Attributes []PlanAttribute `json:"attributes,omitempty"`
}

// PlanAttribute is one name/value pair the planner may attach to criteria.
type PlanAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProductRecord is one catalog item as returned by the WooCommerce REST API.
// Read-only: records are never mutated or cached locally.
type ProductRecord struct {
	Name          string             `json:"name"`
	Price         string             `json:"price"`
	RegularPrice  string             `json:"regular_price"`
	Permalink     string             `json:"permalink"`
	SKU           string             `json:"sku"`
	StockStatus   string             `json:"stock_status"`
	ManageStock   bool               `json:"manage_stock"`
	StockQuantity *int               `json:"stock_quantity"`
	Attributes    []ProductAttribute `json:"attributes"`
}

// ProductAttribute is one attribute block on a catalog record.
type ProductAttribute struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// InStock reports whether a record is eligible for display: either the
// backend marks it instock outright, or stock is managed and quantity is
// known to be positive.
func (p *ProductRecord) InStock() bool {
	if p.StockStatus == "instock" {
		return true
	}
	if p.ManageStock {
		return p.StockQuantity != nil && *p.StockQuantity > 0
	}
	return false
}
