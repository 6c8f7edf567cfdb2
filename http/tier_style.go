package http

import "fmt"

// TierStyle is how a predicted service tier is shown on the result card.
type TierStyle struct {
	Background string `json:"background"`
	Text       string `json:"text"`
	Icon       string `json:"icon"`
}

var tierStyles = map[string]TierStyle{
	"Instant":       {Background: "#D4EDDA", Text: "#155724", Icon: "⚡"},
	"Same Day":      {Background: "#FFF3CD", Text: "#856404", Icon: "🚀"},
	"Hemat / Kargo": {Background: "#F8D7DA", Text: "#721C24", Icon: "🚛"},
}

// fallbackTierStyle covers any label the model emits beyond the known three.
var fallbackTierStyle = TierStyle{Background: "#CCE5FF", Text: "#004085", Icon: "📦"}

func TierStyleFor(label string) TierStyle {
	if style, ok := tierStyles[label]; ok {
		return style
	}
	return fallbackTierStyle
}

// FormatConfidence renders a probability as a one-decimal percentage.
func FormatConfidence(confidence float64) string {
	return fmt.Sprintf("%.1f%%", confidence*100)
}
