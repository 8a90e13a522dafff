package observability

import (
	"strconv"
)

// Pricing constants
const (
	tokensPerKilo       = 1000.0
	costFormatPrecision = 6

	// GPT-5 family pricing
	gpt5InputPrice      = 0.00125
	gpt5OutputPrice     = 0.01
	gpt5MiniInputPrice  = 0.00025
	gpt5MiniOutputPrice = 0.002
	gpt5NanoInputPrice  = 0.00005
	gpt5NanoOutputPrice = 0.0004

	// GPT-4.1-mini pricing
	gpt41MiniInputPrice  = 0.0004
	gpt41MiniOutputPrice = 0.0016

	// Gemini 2.5 pricing
	gemini25FlashInputPrice  = 0.0003
	gemini25FlashOutputPrice = 0.0025
	gemini25ProInputPrice    = 0.00125
	gemini25ProOutputPrice   = 0.01

	defaultPricingModel = "gpt-5-mini"
)

// ModelPricing contains pricing information per 1K tokens
type ModelPricing struct {
	InputPricePer1K  float64 // Price per 1K input tokens in USD
	OutputPricePer1K float64 // Price per 1K output tokens in USD
}

// PricingTable contains pricing for the continuation models
var PricingTable = map[string]ModelPricing{
	"gpt-5":            {InputPricePer1K: gpt5InputPrice, OutputPricePer1K: gpt5OutputPrice},
	"gpt-5-mini":       {InputPricePer1K: gpt5MiniInputPrice, OutputPricePer1K: gpt5MiniOutputPrice},
	"gpt-5-nano":       {InputPricePer1K: gpt5NanoInputPrice, OutputPricePer1K: gpt5NanoOutputPrice},
	"gpt-4.1-mini":     {InputPricePer1K: gpt41MiniInputPrice, OutputPricePer1K: gpt41MiniOutputPrice},
	"gemini-2.5-flash": {InputPricePer1K: gemini25FlashInputPrice, OutputPricePer1K: gemini25FlashOutputPrice},
	"gemini-2.5-pro":   {InputPricePer1K: gemini25ProInputPrice, OutputPricePer1K: gemini25ProOutputPrice},
}

// CalculateCost calculates the cost in USD of one generation. Unknown
// models are priced as gpt-5-mini.
func CalculateCost(model string, inputTokens, outputTokens int64) float64 {
	pricing, exists := PricingTable[model]
	if !exists {
		pricing = PricingTable[defaultPricingModel]
	}

	inputCost := (float64(inputTokens) / tokensPerKilo) * pricing.InputPricePer1K
	outputCost := (float64(outputTokens) / tokensPerKilo) * pricing.OutputPricePer1K
	return inputCost + outputCost
}

// FormatCost formats a cost value as a USD string
func FormatCost(cost float64) string {
	return "$" + strconv.FormatFloat(cost, 'f', costFormatPrecision, 64)
}
