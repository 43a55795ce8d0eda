package postparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPrizes(t *testing.T) {
	t.Parallel()

	t.Run("SortedDescending", func(t *testing.T) {
		t.Parallel()
		prizes := ExtractPrizes("Payouts: $250 for third, $1,000 for second and $2,500.50 for first")
		require.Len(t, prizes, 3)
		assert.Equal(t, 2500.50, prizes[0].Amount)
		assert.Equal(t, 1000.0, prizes[1].Amount)
		assert.Equal(t, 250.0, prizes[2].Amount)
	})

	t.Run("BoundsExcluded", func(t *testing.T) {
		t.Parallel()
		prizes := ExtractPrizes("Win $0 or $10,000,000 or $55,000,000 today")
		assert.Empty(t, prizes)
	})

	t.Run("JustUnderCap", func(t *testing.T) {
		t.Parallel()
		prizes := ExtractPrizes("a record $9,999,999 prize")
		require.Len(t, prizes, 1)
		assert.Equal(t, 9_999_999.0, prizes[0].Amount)
	})

	t.Run("ContextWindow", func(t *testing.T) {
		t.Parallel()
		prizes := ExtractPrizes("John Smith takes home $5,000 after a three way deal at the final table of the Sunday special")
		require.Len(t, prizes, 1)
		assert.Contains(t, prizes[0].Context, "$5,000")
		assert.LessOrEqual(t, len(prizes[0].Context), contextWindow+4)
	})

	t.Run("EmojiBoundaries", func(t *testing.T) {
		t.Parallel()
		prizes := ExtractPrizes("🥇🥇🥇🥇🥇🥇🥇🥇🥇🥇 $500 🥉🥉🥉🥉🥉🥉🥉🥉🥉🥉")
		require.Len(t, prizes, 1)
		assert.Equal(t, 500.0, prizes[0].Amount)
	})

	t.Run("NoAmounts", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, ExtractPrizes("no money mentioned here"))
	})
}

func TestExtractPlacements(t *testing.T) {
	t.Parallel()

	t.Run("OrdinalAndPodiumEquivalent", func(t *testing.T) {
		t.Parallel()
		want := []Placement{{Place: 1, Name: "John", Prize: 1000, HasPrize: true}}
		assert.Equal(t, want, ExtractPlacements("1st: John – $1,000"))
		assert.Equal(t, want, ExtractPlacements("🥇 John $1,000"))
	})

	t.Run("SortedAscending", func(t *testing.T) {
		t.Parallel()
		ps := ExtractPlacements("3rd Carol $100\n1st Alice $500\n2nd Bob $300")
		require.Len(t, ps, 3)
		assert.Equal(t, []int{1, 2, 3}, []int{ps[0].Place, ps[1].Place, ps[2].Place})
		assert.Equal(t, "Alice", ps[0].Name)
		assert.Equal(t, "Bob", ps[1].Name)
		assert.Equal(t, "Carol", ps[2].Name)
	})

	t.Run("DuplicatePlaceFirstWins", func(t *testing.T) {
		t.Parallel()
		ps := ExtractPlacements("1st Alice $500 and also 1st Bob $600")
		require.Len(t, ps, 1)
		assert.Equal(t, "Alice", ps[0].Name)
	})

	t.Run("WordOrdinals", func(t *testing.T) {
		t.Parallel()
		ps := ExtractPlacements("First John Smith, Second Jane Doe")
		require.Len(t, ps, 2)
		assert.Equal(t, Placement{Place: 1, Name: "John Smith"}, ps[0])
		assert.Equal(t, Placement{Place: 2, Name: "Jane Doe"}, ps[1])
	})

	t.Run("NoPrize", func(t *testing.T) {
		t.Parallel()
		ps := ExtractPlacements("2nd Maria on the night")
		require.Len(t, ps, 1)
		assert.Equal(t, 2, ps[0].Place)
		assert.Equal(t, "Maria", ps[0].Name)
		assert.False(t, ps[0].HasPrize)
	})

	t.Run("LowercaseNameIgnored", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, ExtractPlacements("1st place went to someone"))
	})
}

func TestExtractTournamentMetadata(t *testing.T) {
	t.Parallel()

	t.Run("AllFields", func(t *testing.T) {
		t.Parallel()
		md := ExtractTournamentMetadata("Event #12: 150 entries, buy-in $100, prize pool: $15,000. NLH Deepstack Turbo action!")
		require.NotNil(t, md.Entries)
		assert.Equal(t, 150, *md.Entries)
		require.NotNil(t, md.BuyIn)
		assert.Equal(t, 100.0, *md.BuyIn)
		require.NotNil(t, md.PrizePool)
		assert.Equal(t, 15000.0, *md.PrizePool)
		require.NotNil(t, md.EventNumber)
		assert.Equal(t, 12, *md.EventNumber)
		assert.Equal(t, []string{"NLH", "Turbo", "Deepstack"}, md.GameTags)
	})

	t.Run("BuyInBothOrders", func(t *testing.T) {
		t.Parallel()
		a := ExtractTournamentMetadata("buy-in: $250 tonight")
		b := ExtractTournamentMetadata("a $250 buy-in tonight")
		require.NotNil(t, a.BuyIn)
		require.NotNil(t, b.BuyIn)
		assert.Equal(t, *a.BuyIn, *b.BuyIn)
	})

	t.Run("TournamentName", func(t *testing.T) {
		t.Parallel()
		md := ExtractTournamentMetadata("come play our Winter Poker Championship next week")
		assert.Equal(t, "Winter Poker Championship", md.TournamentName)
	})

	t.Run("PLO8BeforePLO", func(t *testing.T) {
		t.Parallel()
		md := ExtractTournamentMetadata("PLO8 round of each")
		assert.Contains(t, md.GameTags, "PLO8")
	})

	t.Run("Empty", func(t *testing.T) {
		t.Parallel()
		md := ExtractTournamentMetadata("see you at the felt")
		assert.Nil(t, md.Entries)
		assert.Nil(t, md.BuyIn)
		assert.NotNil(t, md.GameTags)
		assert.Empty(t, md.GameTags)
	})
}

func TestMatchVenue(t *testing.T) {
	t.Parallel()

	t.Run("Alias", func(t *testing.T) {
		t.Parallel()
		vm := MatchVenue("big series coming to the Aussie Millions stage")
		require.NotNil(t, vm)
		assert.Equal(t, "Crown Poker Room", vm.Name)
		assert.Equal(t, 0.8, vm.Confidence)
	})

	t.Run("NoMatch", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, MatchVenue("home game at my place"))
	})
}
