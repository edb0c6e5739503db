package translation

import "math"

type modelPricing struct {
	input  float64 // USD per 1K input tokens
	output float64 // USD per 1K output tokens
}

// pricing is a static table; update alongside provider price changes.
var pricing = map[string]modelPricing{
	"gpt-4o":      {input: 0.005, output: 0.015},
	"gpt-4o-mini": {input: 0.00015, output: 0.0006},
}

const defaultPricingModel = "gpt-4o"

// EstimateCost returns a rough translation cost in USD for text under
// the given model. Tokens are approximated as ceil(len/4) and the output
// is assumed to be as long as the input. This is an estimate for display
// purposes, not a billing-accurate figure.
func EstimateCost(text, model string) float64 {
	if text == "" {
		return 0
	}

	tokens := math.Ceil(float64(len(text)) / 4)

	p, ok := pricing[model]
	if !ok {
		p = pricing[defaultPricingModel]
	}

	inputCost := (tokens / 1000) * p.input
	outputCost := (tokens / 1000) * p.output

	return inputCost + outputCost
}
