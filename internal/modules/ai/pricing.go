package ai

// modelPrice is list pricing in cents per one million tokens.
type modelPrice struct {
	InCents  int
	OutCents int
}

// Prices are refreshed by hand when providers change their lists. Unknown
// models fall back to defaultPrice so spend is never silently zero.
var modelPrices = map[string]modelPrice{
	"gpt-4o":                    {InCents: 250, OutCents: 1000},
	"gpt-4o-mini":               {InCents: 15, OutCents: 60},
	"claude-haiku-4-5-20251001": {InCents: 100, OutCents: 500},
	"claude-sonnet-4-20250514":  {InCents: 300, OutCents: 1500},
	"gemini-1.5-pro":            {InCents: 125, OutCents: 500},
	"gemini-1.5-flash":          {InCents: 8, OutCents: 30},
	"mock-model":                {InCents: 0, OutCents: 0},
}

var defaultPrice = modelPrice{InCents: 300, OutCents: 1500}

// costCents converts token usage to cents, rounding up so partial cents
// still count against the budget.
func costCents(model string, tokensIn, tokensOut int) int {
	p, ok := modelPrices[model]
	if !ok {
		p = defaultPrice
	}
	const million = 1_000_000
	in := (int64(tokensIn)*int64(p.InCents) + million - 1) / million
	out := (int64(tokensOut)*int64(p.OutCents) + million - 1) / million
	return int(in + out)
}
