package usecases

import (
	"github.com/Milo82/construction-ai-assistant/internal/domain/entities"
	"github.com/shopspring/decimal"
)

// Pricing holds USD rates per 1000 tokens.
type Pricing struct {
	PromptTokenRate     decimal.Decimal
	CompletionTokenRate decimal.Decimal
}

// DefaultPricing is the gpt-4o-mini price list.
var DefaultPricing = Pricing{
	PromptTokenRate:     decimal.RequireFromString("0.00015"),
	CompletionTokenRate: decimal.RequireFromString("0.0006"),
}

var thousand = decimal.NewFromInt(1000)

// Estimate returns (prompt*promptRate + completion*completionRate) / 1000,
// computed exactly.
func (p Pricing) Estimate(usage entities.Usage) decimal.Decimal {
	prompt := decimal.NewFromInt(int64(usage.PromptTokens)).Mul(p.PromptTokenRate)
	completion := decimal.NewFromInt(int64(usage.CompletionTokens)).Mul(p.CompletionTokenRate)
	return prompt.Add(completion).Div(thousand)
}

// FormatCost renders a cost with four decimals, rounding half away from zero
// (half-up for the non-negative costs produced here).
func FormatCost(cost decimal.Decimal) string {
	return "$" + cost.StringFixed(4)
}
