package game

// Derived holds the financial figures computed from an edited record.
// Addons carry no rake, so total rake covers entries and rebuys only.
type Derived struct {
	TotalRake            float64 `json:"totalRake"`
	BuyInsByTotalEntries float64 `json:"buyInsByTotalEntries"`
	Overlay              float64 `json:"overlay"`
	Surplus              float64 `json:"surplus"`
	ProfitLoss           float64 `json:"profitLoss"`
}

// Derive computes the financial view of a record. All inputs are clamped to
// non-negative before use; scraped pages occasionally carry negative
// artifacts that must not propagate.
func Derive(r Record) Derived {
	buyIn := clamp(r.BuyIn)
	rake := clamp(r.Rake)
	entries := clampInt(r.TotalEntries)
	rebuys := clampInt(r.TotalRebuys)
	addons := clampInt(r.TotalAddons)
	guarantee := clamp(r.GuaranteeAmount)

	d := Derived{
		TotalRake:            rake * float64(entries+rebuys),
		BuyInsByTotalEntries: buyIn * float64(entries+rebuys+addons),
	}

	collected := collectedPrizePool(r)
	if r.HasGuarantee && guarantee > collected {
		d.Overlay = guarantee - collected
	}
	if collected > guarantee {
		d.Surplus = collected - guarantee
	}
	d.ProfitLoss = d.TotalRake - d.Overlay

	return d
}

// collectedPrizePool prefers the calculated pool, falling back to the paid
// pool and finally to buy-ins net of rake.
func collectedPrizePool(r Record) float64 {
	if r.PrizePoolCalculated > 0 {
		return r.PrizePoolCalculated
	}
	if r.PrizePoolPaid > 0 {
		return r.PrizePoolPaid
	}
	net := r.BuyIn - r.Rake
	if net < 0 {
		return 0
	}
	return net * float64(clampInt(r.TotalEntries)+clampInt(r.TotalRebuys)+clampInt(r.TotalAddons))
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clampInt(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
