package ml

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrInvalidInput = errors.New("invalid shipment input")

// Form limits.
const (
	MaxWeightKG         = 1_000_000
	MaxProductPrice     = 1_000_000_000
	MaxQuantity         = 10_000
	MaxShippingDiscount = 1_000_000
)

// ShipmentInput is one form submission. It is never stored.
type ShipmentInput struct {
	WeightKG         float64 `json:"weight_kg"`
	ProductPrice     int64   `json:"product_price"`
	Quantity         int64   `json:"quantity"`
	ShippingDiscount int64   `json:"shipping_discount"`
	OrderHour        int     `json:"order_hour"`
	DestinationCity  string  `json:"destination_city"`
}

// DefaultShipmentInput holds the values the form starts with.
func DefaultShipmentInput() ShipmentInput {
	return ShipmentInput{
		WeightKG:         1.0,
		ProductPrice:     50000,
		Quantity:         1,
		ShippingDiscount: 0,
		OrderHour:        12,
		DestinationCity:  "CIMAHI",
	}
}

// Validate reports the first field outside the form limits.
func (in ShipmentInput) Validate() error {
	switch {
	case math.IsNaN(in.WeightKG) || in.WeightKG < 0 || in.WeightKG > MaxWeightKG:
		return fieldError("weight_kg", "must be between 0 and %d", MaxWeightKG)
	case in.ProductPrice < 0 || in.ProductPrice > MaxProductPrice:
		return fieldError("product_price", "must be between 0 and %d", MaxProductPrice)
	case in.Quantity < 1 || in.Quantity > MaxQuantity:
		return fieldError("quantity", "must be between 1 and %d", MaxQuantity)
	case in.ShippingDiscount < 0 || in.ShippingDiscount > MaxShippingDiscount:
		return fieldError("shipping_discount", "must be between 0 and %d", MaxShippingDiscount)
	case in.OrderHour < 0 || in.OrderHour > 23:
		return fieldError("order_hour", "must be between 0 and 23")
	}
	return nil
}

// ParseOrderHour extracts the hour from an "HH:MM" (or "HH:MM:SS") time of day.
func ParseOrderHour(value string) (int, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Hour(), nil
		}
	}
	return 0, fieldError("order_time", "must be HH:MM, got %q", value)
}

func fieldError(field, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidInput, field, fmt.Sprintf(format, args...))
}
