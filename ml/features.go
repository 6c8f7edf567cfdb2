package ml

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// SellerCity is the seller's own city; destinations equal to it are same-city orders.
	SellerCity = "KOTA BANDUNG"

	// BaseShippingFee is always added to the product price before the discount.
	BaseShippingFee = 10000

	pricePerKGEpsilon = 0.001
)

// bandungAreaTokens mark a destination inside greater Bandung. Matching is by
// substring, so "CIMAHI UTARA" counts.
var bandungAreaTokens = [...]string{
	"BANDUNG",
	"CIMAHI",
	"SUMEDANG",
	"SOREANG",
	"LEMBANG",
	"PADALARANG",
}

var upperCaser = cases.Upper(language.Und)

type ShipmentFeatures struct {
	WeightKG         float64
	TotalPaid        float64
	ProductPrice     float64
	ShippingDiscount float64
	Quantity         float64
	PricePerKG       float64
	IsSameCity       float64
	IsBandungArea    float64
	OrderHour        float64
}

// DeriveFeatures turns raw form input into the engineered features the model was
// trained on. It is pure and defined for every input; range checks live in
// ShipmentInput.Validate.
func DeriveFeatures(in ShipmentInput) ShipmentFeatures {
	totalPaid := in.ProductPrice + BaseShippingFee - in.ShippingDiscount
	if totalPaid < 0 {
		totalPaid = 0
	}
	pricePerKG := float64(totalPaid) / (in.WeightKG + pricePerKGEpsilon)

	city := NormalizeCity(in.DestinationCity)

	return ShipmentFeatures{
		WeightKG:         in.WeightKG,
		TotalPaid:        float64(totalPaid),
		ProductPrice:     float64(in.ProductPrice),
		ShippingDiscount: float64(in.ShippingDiscount),
		Quantity:         float64(in.Quantity),
		PricePerKG:       pricePerKG,
		IsSameCity:       boolToFloat(city == SellerCity),
		IsBandungArea:    boolToFloat(inBandungArea(city)),
		OrderHour:        float64(in.OrderHour),
	}
}

// NormalizeCity trims and upper-cases a destination using full Unicode case mapping.
func NormalizeCity(city string) string {
	return upperCaser.String(strings.TrimSpace(city))
}

func inBandungArea(city string) bool {
	for _, token := range bandungAreaTokens {
		if strings.Contains(city, token) {
			return true
		}
	}
	return false
}

// BandungAreaTokens returns a copy of the regional substring tokens.
func BandungAreaTokens() []string {
	tokens := make([]string, len(bandungAreaTokens))
	copy(tokens, bandungAreaTokens[:])
	return tokens
}

// Vector returns the features in training column order, see FeatureNames.
func (f ShipmentFeatures) Vector() []float64 {
	return []float64{
		f.WeightKG,
		f.TotalPaid,
		f.ProductPrice,
		f.ShippingDiscount,
		f.Quantity,
		f.PricePerKG,
		f.IsSameCity,
		f.IsBandungArea,
		f.OrderHour,
	}
}

// FeatureNames are the training-time column names, index-aligned with Vector.
func FeatureNames() []string {
	return []string{
		"Berat_KG",
		"Total_Bayar",
		"Harga_Produk",
		"Diskon_Ongkir",
		"Qty",
		"Harga_per_KG",
		"Is_Same_City",
		"Is_Bandung_Area",
		"Jam_Pesan",
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
