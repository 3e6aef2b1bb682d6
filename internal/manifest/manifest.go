// Package manifest defines the shipment manifest document accepted at the
// intake boundary: the expected set of orders for one dispatch cycle.
package manifest

import (
	"sort"
	"strings"

	derrors "git.home.luguber.info/inful/dispatchmon/internal/errors"
)

// Customer is the contact attached to an order, used for outbound notifications.
type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Order is one customer's expected products: product code to expected quantity.
type Order struct {
	Customer Customer       `json:"customer"`
	Products map[string]int `json:"products"`
}

// Shipment is the manifest for a single dispatch cycle. Immutable after
// installation until the cycle ends.
type Shipment struct {
	ShipmentID string  `json:"shipment_id"`
	Orders     []Order `json:"orders"`
}

// Validate checks structural completeness of the manifest document. It does
// not touch the tag database; resolution happens at intake.
func (s *Shipment) Validate() error {
	if strings.TrimSpace(s.ShipmentID) == "" {
		return derrors.ValidationFailed("shipment_id", "must not be empty")
	}
	if len(s.Orders) == 0 {
		return derrors.ValidationFailed("orders", "at least one order required")
	}
	for i, o := range s.Orders {
		if strings.TrimSpace(o.Customer.Name) == "" {
			return derrors.ValidationFailed("orders.customer.name", "must not be empty")
		}
		if len(o.Products) == 0 {
			return derrors.ValidationFailed("orders.products", "at least one product required")
		}
		for code, qty := range o.Products {
			if strings.TrimSpace(code) == "" {
				return derrors.ValidationFailed("orders.products", "product code must not be empty")
			}
			if qty <= 0 {
				return derrors.ValidationFailed("orders.products", "quantity must be positive").
					WithContext("product_code", code).
					WithContext("order_index", i)
			}
		}
	}
	return nil
}

// ProductQuantities flattens all orders into a single product code to total
// expected quantity mapping.
func (s *Shipment) ProductQuantities() map[string]int {
	totals := make(map[string]int)
	for _, o := range s.Orders {
		for code, qty := range o.Products {
			totals[code] += qty
		}
	}
	return totals
}

// ProductCodes returns the distinct product codes across all orders, sorted
// for deterministic resolution and logging.
func (s *Shipment) ProductCodes() []string {
	totals := s.ProductQuantities()
	codes := make([]string, 0, len(totals))
	for code := range totals {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// ExpectedItemCount returns the total number of tagged items the manifest expects.
func (s *Shipment) ExpectedItemCount() int {
	n := 0
	for _, qty := range s.ProductQuantities() {
		n += qty
	}
	return n
}
