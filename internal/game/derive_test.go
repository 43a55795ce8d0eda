package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerive(t *testing.T) {
	t.Parallel()

	t.Run("RunningTournament", func(t *testing.T) {
		t.Parallel()
		d := Derive(Record{
			BuyIn:        100,
			Rake:         10,
			TotalEntries: 30,
			TotalRebuys:  5,
			TotalAddons:  2,
		})
		assert.Equal(t, 350.0, d.TotalRake)
		assert.Equal(t, 3700.0, d.BuyInsByTotalEntries)
		assert.Zero(t, d.Overlay)
		assert.Equal(t, 350.0, d.ProfitLoss)
	})

	t.Run("Overlay", func(t *testing.T) {
		t.Parallel()
		d := Derive(Record{
			BuyIn:               100,
			Rake:                10,
			TotalEntries:        40,
			HasGuarantee:        true,
			GuaranteeAmount:     10000,
			PrizePoolCalculated: 3600,
		})
		assert.Equal(t, 400.0, d.TotalRake)
		assert.Equal(t, 6400.0, d.Overlay)
		assert.Zero(t, d.Surplus)
		assert.Equal(t, -6000.0, d.ProfitLoss)
	})

	t.Run("Surplus", func(t *testing.T) {
		t.Parallel()
		d := Derive(Record{
			HasGuarantee:        true,
			GuaranteeAmount:     5000,
			PrizePoolCalculated: 8000,
		})
		assert.Zero(t, d.Overlay)
		assert.Equal(t, 3000.0, d.Surplus)
	})

	t.Run("NoOverlayWithoutGuarantee", func(t *testing.T) {
		t.Parallel()
		d := Derive(Record{
			GuaranteeAmount:     10000,
			PrizePoolCalculated: 100,
		})
		assert.Zero(t, d.Overlay)
	})

	t.Run("NegativeInputsClamped", func(t *testing.T) {
		t.Parallel()
		d := Derive(Record{
			BuyIn:        -100,
			Rake:         -10,
			TotalEntries: -3,
			TotalRebuys:  5,
		})
		assert.Zero(t, d.TotalRake)
		assert.Zero(t, d.BuyInsByTotalEntries)
		assert.Zero(t, d.ProfitLoss)
	})

	t.Run("PaidPoolFallback", func(t *testing.T) {
		t.Parallel()
		d := Derive(Record{
			HasGuarantee:    true,
			GuaranteeAmount: 5000,
			PrizePoolPaid:   4000,
		})
		assert.Equal(t, 1000.0, d.Overlay)
	})

	t.Run("NetBuyInFallback", func(t *testing.T) {
		t.Parallel()
		// No pool reported: collected = (100-10) * 40 = 3600.
		d := Derive(Record{
			BuyIn:           100,
			Rake:            10,
			TotalEntries:    40,
			HasGuarantee:    true,
			GuaranteeAmount: 5000,
		})
		assert.Equal(t, 1400.0, d.Overlay)
	})
}
