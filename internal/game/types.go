package game

import "time"

// GameStatus is the lifecycle state reported by the tournament source.
type GameStatus string

const (
	StatusInitiating   GameStatus = "INITIATING"
	StatusScheduled    GameStatus = "SCHEDULED"
	StatusRegistering  GameStatus = "REGISTERING"
	StatusRunning      GameStatus = "RUNNING"
	StatusClockStopped GameStatus = "CLOCK_STOPPED"
	StatusFinished     GameStatus = "FINISHED"
	StatusCancelled    GameStatus = "CANCELLED"
	StatusNotPublished GameStatus = "NOT_PUBLISHED"
	StatusNotInUse     GameStatus = "NOT_IN_USE"
	StatusUnknown      GameStatus = "UNKNOWN"
)

// GameType distinguishes tournaments from cash games.
type GameType string

const (
	TypeTournament GameType = "TOURNAMENT"
	TypeCashGame   GameType = "CASH_GAME"
)

// Variant is the poker variant.
type Variant string

const (
	VariantNLHE Variant = "NLHE"
	VariantPLOM Variant = "PLOM"
	VariantPLO5 Variant = "PLO5"
	VariantPLO6 Variant = "PLO6"
)

// VenueAssignmentStatusAutoAssigned marks placeholder records so the backend
// does not apply its default pending status to them.
const VenueAssignmentStatusAutoAssigned = "AUTO_ASSIGNED"

// Level is one blind level.
type Level struct {
	LevelNumber     int      `json:"levelNumber"`
	DurationMinutes int      `json:"durationMinutes"`
	SmallBlind      float64  `json:"smallBlind"`
	BigBlind        float64  `json:"bigBlind"`
	Ante            *float64 `json:"ante,omitempty"`
}

// Result is one final placement.
type Result struct {
	Rank            int      `json:"rank"`
	Name            string   `json:"name"`
	Winnings        float64  `json:"winnings"`
	Points          *float64 `json:"points,omitempty"`
	IsQualification *bool    `json:"isQualification,omitempty"`
}

// Entry is one player entry row.
type Entry struct {
	Name     string     `json:"name"`
	Rebuys   int        `json:"rebuys"`
	Addons   int        `json:"addons"`
	BustedAt *time.Time `json:"bustedAt,omitempty"`
}

// Seat is one seating assignment.
type Seat struct {
	TableNumber int    `json:"tableNumber"`
	SeatNumber  int    `json:"seatNumber"`
	Name        string `json:"name"`
	StackSize   int    `json:"stackSize"`
}

// VenueMatch is the backend's venue suggestion attached to a record.
type VenueMatch struct {
	VenueID    string  `json:"venueId"`
	VenueName  string  `json:"venueName"`
	Confidence float64 `json:"confidence"`
}

// Record is the normalized form of a scraped tournament. Identity is
// (EntityID, TournamentID); the record may also be known by its source URL.
type Record struct {
	EntityID            string      `json:"entityId,omitempty"`
	TournamentID        int         `json:"tournamentId"`
	Name                string      `json:"name"`
	GameType            GameType    `json:"gameType"`
	GameVariant         Variant     `json:"gameVariant,omitempty"`
	GameStatus          GameStatus  `json:"gameStatus"`
	RegistrationStatus  string      `json:"registrationStatus,omitempty"`
	StartDateTime       *time.Time  `json:"gameStartDateTime,omitempty"`
	EndDateTime         *time.Time  `json:"gameEndDateTime,omitempty"`
	BuyIn               float64     `json:"buyIn"`
	Rake                float64     `json:"rake"`
	GuaranteeAmount     float64     `json:"guaranteeAmount"`
	HasGuarantee        bool        `json:"hasGuarantee"`
	StartingStack       int         `json:"startingStack"`
	TotalEntries        int         `json:"totalEntries"`
	TotalRebuys         int         `json:"totalRebuys"`
	TotalAddons         int         `json:"totalAddons"`
	TotalUniquePlayers  int         `json:"totalUniquePlayers"`
	PrizePoolPaid       float64     `json:"prizePoolPaid"`
	PrizePoolCalculated float64     `json:"prizePoolCalculated"`
	Levels              []Level     `json:"levels"`
	Results             []Result    `json:"results"`
	Entries             []Entry     `json:"entries"`
	Seating             []Seat      `json:"seating"`
	RawHTML             string      `json:"rawHtml,omitempty"`
	FoundKeys           []string    `json:"foundKeys"`
	VenueMatch          *VenueMatch `json:"venueMatch,omitempty"`
	ExistingGameID      string      `json:"existingGameId,omitempty"`
	DoNotScrape         bool        `json:"doNotScrape,omitempty"`
}

// IsLive reports whether the game is actively in progress. Live games are
// candidates for auto-refresh tracking.
func (s GameStatus) IsLive() bool {
	switch s {
	case StatusRunning, StatusInitiating, StatusClockStopped:
		return true
	}
	return false
}
