package postparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolvePostedAt(t *testing.T) {
	t.Parallel()

	var (
		fixed = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		now   = func() time.Time { return fixed }
	)

	t.Run("EpochSeconds", func(t *testing.T) {
		t.Parallel()
		got := resolvePostedAt(RawPost{PostedAt: float64(1_700_000_000)}, now)
		assert.Equal(t, time.Unix(1_700_000_000, 0).UTC(), got)
	})

	t.Run("EpochMillis", func(t *testing.T) {
		t.Parallel()
		got := resolvePostedAt(RawPost{PostedAt: float64(1_700_000_000_000)}, now)
		assert.Equal(t, time.Unix(1_700_000_000, 0).UTC(), got)
	})

	t.Run("NumericString", func(t *testing.T) {
		t.Parallel()
		got := resolvePostedAt(RawPost{PostedAt: "1700000000"}, now)
		assert.Equal(t, time.Unix(1_700_000_000, 0).UTC(), got)
	})

	t.Run("ISOString", func(t *testing.T) {
		t.Parallel()
		got := resolvePostedAt(RawPost{PostedAt: "2025-01-02T03:04:05Z"}, now)
		assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), got)
	})

	t.Run("DateOnly", func(t *testing.T) {
		t.Parallel()
		got := resolvePostedAt(RawPost{PostedAt: "2025-01-02"}, now)
		assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("PriorityOrder", func(t *testing.T) {
		t.Parallel()
		got := resolvePostedAt(RawPost{
			CreatedAt: "2025-01-02T03:04:05Z",
			Timestamp: float64(1_600_000_000),
		}, now)
		assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), got)
	})

	t.Run("ExtractedDateBeforeScrapedAt", func(t *testing.T) {
		t.Parallel()
		got := resolvePostedAt(RawPost{
			ExtractedDate: "2025-03-04",
			ScrapedAt:     float64(1_700_000_000),
		}, now)
		assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("FallbackToNow", func(t *testing.T) {
		t.Parallel()
		got := resolvePostedAt(RawPost{PostedAt: "not a date", ExtractedDate: "junk"}, now)
		assert.Equal(t, fixed, got)
	})

	t.Run("ZeroAndNegativeIgnored", func(t *testing.T) {
		t.Parallel()
		got := resolvePostedAt(RawPost{PostedAt: float64(0), CreatedAt: float64(-5)}, now)
		assert.Equal(t, fixed, got)
	})
}
