package ml

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultShipmentInputIsValid(t *testing.T) {
	assert.NoError(t, DefaultShipmentInput().Validate())
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	cases := map[string]func(*ShipmentInput){
		"weight_kg":         func(in *ShipmentInput) { in.WeightKG = -0.5 },
		"weight_kg nan":     func(in *ShipmentInput) { in.WeightKG = math.NaN() },
		"weight_kg inf":     func(in *ShipmentInput) { in.WeightKG = math.Inf(1) },
		"product_price":     func(in *ShipmentInput) { in.ProductPrice = -1 },
		"quantity":          func(in *ShipmentInput) { in.Quantity = 0 },
		"quantity max":      func(in *ShipmentInput) { in.Quantity = MaxQuantity + 1 },
		"shipping_discount": func(in *ShipmentInput) { in.ShippingDiscount = MaxShippingDiscount + 1 },
		"order_hour":        func(in *ShipmentInput) { in.OrderHour = 24 },
		"order_hour neg":    func(in *ShipmentInput) { in.OrderHour = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := DefaultShipmentInput()
			mutate(&in)
			err := in.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}

func TestValidateAcceptsBounds(t *testing.T) {
	in := ShipmentInput{
		WeightKG:         0,
		ProductPrice:     MaxProductPrice,
		Quantity:         MaxQuantity,
		ShippingDiscount: MaxShippingDiscount,
		OrderHour:        23,
	}
	assert.NoError(t, in.Validate())
}

func TestParseOrderHour(t *testing.T) {
	hour, err := ParseOrderHour("12:00")
	require.NoError(t, err)
	assert.Equal(t, 12, hour)

	hour, err = ParseOrderHour("07:45:10")
	require.NoError(t, err)
	assert.Equal(t, 7, hour)

	hour, err = ParseOrderHour("23:59")
	require.NoError(t, err)
	assert.Equal(t, 23, hour)

	for _, bad := range []string{"", "noon", "25:00", "12"} {
		_, err := ParseOrderHour(bad)
		assert.ErrorIs(t, err, ErrInvalidInput, "value %q", bad)
	}
}
