package game

import (
	"regexp"
	"strings"
	"time"

	"github.com/hoganho/kingsroom-sub004/internal/gql"
)

// Normalize converts a raw scrape payload into a Record. Nullable strings
// map to the value or the zero string; nullable counts map to zero; optional
// nested values keep their pointers; arrays are never nil.
func Normalize(p *gql.TournamentPayload) Record {
	if p == nil {
		return Record{
			GameStatus: StatusUnknown,
			Levels:     []Level{},
			Results:    []Result{},
			Entries:    []Entry{},
			Seating:    []Seat{},
			FoundKeys:  []string{},
		}
	}

	r := Record{
		TournamentID:        intOf(p.TournamentID),
		Name:                strOf(p.Name),
		GameType:            GameType(strOf(p.GameType)),
		GameVariant:         Variant(strOf(p.GameVariant)),
		GameStatus:          GameStatus(strOf(p.GameStatus)),
		RegistrationStatus:  strOf(p.RegistrationStatus),
		StartDateTime:       timeOf(p.StartDateTime),
		EndDateTime:         timeOf(p.EndDateTime),
		BuyIn:               floatOf(p.BuyIn),
		Rake:                floatOf(p.Rake),
		GuaranteeAmount:     floatOf(p.GuaranteeAmount),
		StartingStack:       intOf(p.StartingStack),
		TotalEntries:        intOf(p.TotalEntries),
		TotalRebuys:         intOf(p.TotalRebuys),
		TotalAddons:         intOf(p.TotalAddons),
		TotalUniquePlayers:  intOf(p.TotalUniquePlayers),
		PrizePoolPaid:       floatOf(p.PrizePoolPaid),
		PrizePoolCalculated: floatOf(p.PrizePoolCalculated),
		RawHTML:             strOf(p.RawHTML),
		ExistingGameID:      strOf(p.ExistingGameID),
		DoNotScrape:         boolOf(p.DoNotScrape),
		Levels:              []Level{},
		Results:             []Result{},
		Entries:             []Entry{},
		Seating:             []Seat{},
		FoundKeys:           []string{},
	}

	if r.GameType == "" {
		r.GameType = TypeTournament
	}
	if r.GameStatus == "" {
		r.GameStatus = StatusUnknown
	}

	// hasGuarantee derives from the amount; the wire flag only ever widens it.
	r.HasGuarantee = r.GuaranteeAmount > 0 || boolOf(p.HasGuarantee)

	for _, lv := range p.Levels {
		if lv == nil {
			continue
		}
		r.Levels = append(r.Levels, Level{
			LevelNumber:     intOf(lv.LevelNumber),
			DurationMinutes: intOf(lv.DurationMinutes),
			SmallBlind:      floatOf(lv.SmallBlind),
			BigBlind:        floatOf(lv.BigBlind),
			Ante:            lv.Ante,
		})
	}
	for _, res := range p.Results {
		if res == nil {
			continue
		}
		r.Results = append(r.Results, Result{
			Rank:            intOf(res.Rank),
			Name:            strOf(res.Name),
			Winnings:        floatOf(res.Winnings),
			Points:          res.Points,
			IsQualification: res.IsQualification,
		})
	}
	for _, e := range p.Entries {
		if e == nil {
			continue
		}
		entry := Entry{
			Name:   strOf(e.Name),
			Rebuys: intOf(e.Rebuys),
			Addons: intOf(e.Addons),
		}
		if e.BustedAt != nil && !e.BustedAt.IsZero() {
			t := e.BustedAt.Time
			entry.BustedAt = &t
		}
		r.Entries = append(r.Entries, entry)
	}
	for _, s := range p.Seating {
		if s == nil {
			continue
		}
		r.Seating = append(r.Seating, Seat{
			TableNumber: intOf(s.TableNumber),
			SeatNumber:  intOf(s.SeatNumber),
			Name:        strOf(s.Name),
			StackSize:   intOf(s.StackSize),
		})
	}
	for _, k := range p.FoundKeys {
		if k == nil || *k == "" {
			continue
		}
		r.FoundKeys = append(r.FoundKeys, *k)
	}
	if p.VenueMatch != nil {
		r.VenueMatch = &VenueMatch{
			VenueID:    strOf(p.VenueMatch.VenueID),
			VenueName:  strOf(p.VenueMatch.VenueName),
			Confidence: floatOf(p.VenueMatch.Confidence),
		}
	}

	if r.GameStatus == StatusNotPublished {
		zeroCounters(&r)
	}

	return r
}

// NotPublishedPlaceholder builds the record saved for an unpublished
// tournament id: zeroed counters, no player data, and an explicit
// AUTO_ASSIGNED venue-assignment status to override the backend default.
func NotPublishedPlaceholder(entityID string, tournamentID int) Record {
	return Record{
		EntityID:     entityID,
		TournamentID: tournamentID,
		Name:         "Not Published",
		GameType:     TypeTournament,
		GameStatus:   StatusNotPublished,
		Levels:       []Level{},
		Results:      []Result{},
		Entries:      []Entry{},
		Seating:      []Seat{},
		FoundKeys:    []string{},
	}
}

// zeroCounters enforces the NOT_PUBLISHED invariant: numeric counters are
// zero and no player processing input survives.
func zeroCounters(r *Record) {
	r.BuyIn = 0
	r.Rake = 0
	r.GuaranteeAmount = 0
	r.HasGuarantee = false
	r.StartingStack = 0
	r.TotalEntries = 0
	r.TotalRebuys = 0
	r.TotalAddons = 0
	r.TotalUniquePlayers = 0
	r.PrizePoolPaid = 0
	r.PrizePoolCalculated = 0
	r.Results = []Result{}
	r.Entries = []Entry{}
	r.Seating = []Seat{}
}

var nameSpaceRun = regexp.MustCompile(`\s+`)

// NormalizeGameName trims and collapses whitespace in a display name.
// Idempotent: applying it twice equals applying it once.
func NormalizeGameName(name string) string {
	name = nameSpaceRun.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

func strOf(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func intOf(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func floatOf(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func boolOf(p *bool) bool {
	if p == nil {
		return false
	}
	return *p
}

func timeOf(p *gql.FlexTime) *time.Time {
	if p == nil || p.IsZero() {
		return nil
	}
	t := p.Time
	return &t
}
