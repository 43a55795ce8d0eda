package postparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	t.Run("Result", func(t *testing.T) {
		t.Parallel()
		c := classify("Congratulations to our winners! 🥇 John Smith $5,000 🥈 Jane Doe $3,000. What a final table!")
		assert.Equal(t, TypeResult, c.Type)
		assert.Equal(t, 7, c.ResultScore)
		assert.Zero(t, c.PromoScore)
		assert.Equal(t, 84, c.Confidence)
		assert.Contains(t, c.Matched, "multiplePodium")
		assert.Contains(t, c.Matched, "congratsWinner")
		assert.Contains(t, c.Matched, "finalTable")
	})

	t.Run("Promotional", func(t *testing.T) {
		t.Parallel()
		c := classify("Join us this Friday! Buy-in: $150, 20k starting stack, $10,000 GTD prize pool.")
		assert.Equal(t, TypePromotional, c.Type)
		assert.Zero(t, c.ResultScore)
		assert.Equal(t, 12, c.PromoScore)
		assert.Equal(t, 100, c.Confidence)
		assert.Contains(t, c.Matched, "joinUs")
		assert.Contains(t, c.Matched, "upcomingDay")
		assert.Contains(t, c.Matched, "buyInAnnouncement")
	})

	t.Run("General", func(t *testing.T) {
		t.Parallel()
		c := classify("Great night at the tables with friends.")
		assert.Equal(t, TypeGeneral, c.Type)
		assert.Zero(t, c.Confidence)
		assert.Empty(t, c.Matched)
	})

	t.Run("MixedContentFavorsHigherScore", func(t *testing.T) {
		t.Parallel()
		// Both sides qualify but promo outscores result, so the strict
		// comparison wins before the tie-break is reached.
		c := classify("Congrats John for taking down 1st for $2,000. Next Saturday, $200 buy-in, $10,000 GTD, join us!")
		assert.Equal(t, 7, c.ResultScore)
		assert.Equal(t, 10, c.PromoScore)
		assert.Equal(t, TypePromotional, c.Type)
		assert.Equal(t, 100, c.Confidence)
	})

	t.Run("EqualQualifyingScoresLeanResult", func(t *testing.T) {
		t.Parallel()
		c := classify("Congrats to everyone who came out. Late reg is open again soon.")
		require.Equal(t, 3, c.ResultScore)
		require.Equal(t, 3, c.PromoScore)
		assert.Equal(t, TypeResult, c.Type)
		assert.Equal(t, 30, c.Confidence)
	})

	t.Run("URLsStrippedBeforeScoring", func(t *testing.T) {
		t.Parallel()
		c := classify("Check https://example.com/results?q=1st+place+congrats tonight")
		assert.Equal(t, TypeGeneral, c.Type)
		assert.Zero(t, c.ResultScore)
	})
}

func TestIsComment(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name   string
		postID string
		url    string
		want   bool
	}{
		{"PostPrefix", "post_123", "https://fb.com/x", true},
		{"CommentIDParam", "123", "https://fb.com/x?comment_id=456", true},
		{"RegularPost", "123", "https://fb.com/x", false},
		{"PrefixElsewhere", "my_post_123", "https://fb.com/x", false},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsComment(tt.postID, tt.url))
		})
	}
}

func TestParseSocialPost(t *testing.T) {
	t.Parallel()

	t.Run("CommentShortCircuits", func(t *testing.T) {
		t.Parallel()
		p := ParseSocialPost(RawPost{
			PostID:  "post_1",
			URL:     "https://fb.com/x",
			Content: "Congrats John, 1st for $2,000!",
		}, Options{})
		assert.True(t, p.IsComment)
		assert.Equal(t, TypeComment, p.PostType)
		assert.Zero(t, p.Confidence)
		assert.Empty(t, p.MatchedPatterns)
		assert.Empty(t, p.Placements)
	})

	t.Run("FullParse", func(t *testing.T) {
		t.Parallel()
		p := ParseSocialPost(RawPost{
			PostID:   "42",
			Content:  "Congratulations! 1st: John Smith – $1,000 from 85 entries at Kings Room.",
			PostedAt: float64(1_700_000_000),
			Likes:    3,
		}, Options{})
		assert.Equal(t, TypeResult, p.PostType)
		require.Len(t, p.Placements, 1)
		assert.Equal(t, Placement{Place: 1, Name: "John Smith", Prize: 1000, HasPrize: true}, p.Placements[0])
		require.NotNil(t, p.Metadata.Entries)
		assert.Equal(t, 85, *p.Metadata.Entries)
		require.NotNil(t, p.VenueMatch)
		assert.Equal(t, "Kings Room", p.VenueMatch.Name)
		assert.Equal(t, time.Unix(1_700_000_000, 0).UTC(), p.PostedAt)
		assert.Equal(t, 3, p.Engagement.Likes)
	})

	t.Run("FallbackClock", func(t *testing.T) {
		t.Parallel()
		fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		p := ParseSocialPost(RawPost{PostID: "42", Content: "hello"}, Options{
			Now: func() time.Time { return fixed },
		})
		assert.Equal(t, fixed, p.PostedAt)
	})
}
