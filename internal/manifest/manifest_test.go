package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/dispatchmon/internal/errors"
)

func validShipment() *Shipment {
	return &Shipment{
		ShipmentID: "SHP-100",
		Orders: []Order{
			{Customer: Customer{Name: "Acme", Email: "ops@acme.test"}, Products: map[string]int{"WIDGET": 2}},
			{Customer: Customer{Name: "Bolt", Phone: "+4712345678"}, Products: map[string]int{"WIDGET": 1, "GEAR": 3}},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validShipment().Validate())
}

func TestValidate_Failures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Shipment)
	}{
		{"empty shipment id", func(s *Shipment) { s.ShipmentID = "  " }},
		{"no orders", func(s *Shipment) { s.Orders = nil }},
		{"no customer name", func(s *Shipment) { s.Orders[0].Customer.Name = "" }},
		{"no products", func(s *Shipment) { s.Orders[1].Products = nil }},
		{"zero quantity", func(s *Shipment) { s.Orders[0].Products["WIDGET"] = 0 }},
		{"blank product code", func(s *Shipment) { s.Orders[0].Products[" "] = 1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := validShipment()
			tc.mutate(s)
			err := s.Validate()
			require.Error(t, err)
			c, ok := derrors.AsClassified(err)
			require.True(t, ok)
			assert.Equal(t, derrors.CategoryValidation, c.Category())
		})
	}
}

func TestProductQuantities_SumsAcrossOrders(t *testing.T) {
	s := validShipment()
	assert.Equal(t, map[string]int{"WIDGET": 3, "GEAR": 3}, s.ProductQuantities())
	assert.Equal(t, []string{"GEAR", "WIDGET"}, s.ProductCodes())
	assert.Equal(t, 6, s.ExpectedItemCount())
}
