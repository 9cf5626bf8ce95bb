package pricing

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type TierLine struct {
	Tier     Tier            `json:"tier"`
	Seats    []string        `json:"seats"`
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type Summary struct {
	Lines []TierLine      `json:"lines"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// Summarize totals seat prices grouped by tier, cheapest tier first.
func Summarize(seats []Seat) Summary {
	byTier := lo.GroupBy(seats, func(s Seat) Tier { return s.Tier })

	summary := Summary{Total: decimal.Zero}
	for _, tier := range Tiers {
		group, ok := byTier[tier]
		if !ok {
			continue
		}
		line := TierLine{
			Tier:     tier,
			Seats:    lo.Map(group, func(s Seat, _ int) string { return s.ID }),
			Count:    len(group),
			Subtotal: decimal.Sum(decimal.Zero, lo.Map(group, func(s Seat, _ int) decimal.Decimal { return s.Price })...),
		}
		summary.Lines = append(summary.Lines, line)
		summary.Count += line.Count
		summary.Total = summary.Total.Add(line.Subtotal)
	}
	return summary
}
