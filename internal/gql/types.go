package gql

import (
	"strconv"
	"strings"
	"time"
)

// FlexTime unmarshals the backend's assorted timestamp encodings: RFC3339
// strings, seconds-since-epoch, and milliseconds-since-epoch. Magnitude
// below 1e10 means seconds.
type FlexTime struct {
	time.Time
}

func (t *FlexTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		t.Time = EpochTime(n)
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	// Unparseable timestamps degrade to zero rather than failing the payload.
	t.Time = time.Time{}
	return nil
}

func (t FlexTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}

// EpochTime converts a numeric epoch to a time, treating values under 1e10
// as seconds and anything larger as milliseconds.
func EpochTime(n float64) time.Time {
	if n < 1e10 {
		return time.Unix(int64(n), 0).UTC()
	}
	return time.UnixMilli(int64(n)).UTC()
}

// LevelPayload is one blind level as returned by the scraper backend.
type LevelPayload struct {
	LevelNumber     *int     `json:"levelNumber"`
	DurationMinutes *int     `json:"durationMinutes"`
	SmallBlind      *float64 `json:"smallBlind"`
	BigBlind        *float64 `json:"bigBlind"`
	Ante            *float64 `json:"ante"`
}

// ResultPayload is one placement as returned by the scraper backend.
type ResultPayload struct {
	Rank            *int     `json:"rank"`
	Name            *string  `json:"name"`
	Winnings        *float64 `json:"winnings"`
	Points          *float64 `json:"points"`
	IsQualification *bool    `json:"isQualification"`
}

// EntryPayload is one player entry row.
type EntryPayload struct {
	Name     *string   `json:"name"`
	Rebuys   *int      `json:"rebuys"`
	Addons   *int      `json:"addons"`
	BustedAt *FlexTime `json:"bustedAt"`
}

// SeatPayload is one seating assignment row.
type SeatPayload struct {
	TableNumber *int    `json:"tableNumber"`
	SeatNumber  *int    `json:"seatNumber"`
	Name        *string `json:"name"`
	StackSize   *int    `json:"stackSize"`
}

// VenueMatchPayload is the backend's venue suggestion for a scraped game.
type VenueMatchPayload struct {
	VenueID    *string  `json:"venueId"`
	VenueName  *string  `json:"venueName"`
	Confidence *float64 `json:"confidence"`
}

// TournamentPayload is the raw scrape result. Every field is nullable on the
// wire; normalization into a game.Record happens in internal/game.
type TournamentPayload struct {
	TournamentID        *int               `json:"tournamentId"`
	Name                *string            `json:"name"`
	GameType            *string            `json:"gameType"`
	GameVariant         *string            `json:"gameVariant"`
	GameStatus          *string            `json:"gameStatus"`
	RegistrationStatus  *string            `json:"registrationStatus"`
	StartDateTime       *FlexTime          `json:"gameStartDateTime"`
	EndDateTime         *FlexTime          `json:"gameEndDateTime"`
	BuyIn               *float64           `json:"buyIn"`
	Rake                *float64           `json:"rake"`
	GuaranteeAmount     *float64           `json:"guaranteeAmount"`
	HasGuarantee        *bool              `json:"hasGuarantee"`
	StartingStack       *int               `json:"startingStack"`
	TotalEntries        *int               `json:"totalEntries"`
	TotalRebuys         *int               `json:"totalRebuys"`
	TotalAddons         *int               `json:"totalAddons"`
	TotalUniquePlayers  *int               `json:"totalUniquePlayers"`
	PrizePoolPaid       *float64           `json:"prizePoolPaid"`
	PrizePoolCalculated *float64           `json:"prizePoolCalculated"`
	Levels              []*LevelPayload    `json:"levels"`
	Results             []*ResultPayload   `json:"results"`
	Entries             []*EntryPayload    `json:"entries"`
	Seating             []*SeatPayload     `json:"seating"`
	RawHTML             *string            `json:"rawHtml"`
	FoundKeys           []*string          `json:"foundKeys"`
	VenueMatch          *VenueMatchPayload `json:"venueMatch"`
	ExistingGameID      *string            `json:"existingGameId"`
	DoNotScrape         *bool              `json:"doNotScrape"`
}

// FetchResult wraps a tournament payload with fetch provenance.
type FetchResult struct {
	Game      *TournamentPayload `json:"game"`
	S3Key     *string            `json:"s3Key"`
	WasForced *bool              `json:"wasForced"`
	Source    *string            `json:"source"`
	FromCache *bool              `json:"fromCache"`
	Error     *string            `json:"error"`
}

// ScrapeURLRecord is a knowledge-base snapshot for one source URL.
type ScrapeURLRecord struct {
	ID            string    `json:"id"`
	URL           string    `json:"url"`
	LastStatus    string    `json:"lastStatus"`
	LastScrapedAt *FlexTime `json:"lastScrapedAt"`
	LatestS3Key   *string   `json:"latestS3Key"`
	DoNotScrape   bool      `json:"doNotScrape"`
}

// ScraperJob is the wire form of a batch scrape job. The same shape is
// delivered by getScraperJobsReportMinimal and by onScraperJobUpdate events,
// so all fields are nullable and merged client-side.
type ScraperJob struct {
	ID                 string    `json:"id"`
	JobID              string    `json:"jobId"`
	Status             *string   `json:"status"`
	StartTime          *FlexTime `json:"startTime"`
	EndTime            *FlexTime `json:"endTime"`
	StartID            *int      `json:"startId"`
	EndID              *int      `json:"endId"`
	CurrentID          *int      `json:"currentId"`
	DurationSeconds    *int      `json:"durationSeconds"`
	TotalURLsProcessed *int      `json:"totalUrlsProcessed"`
	NewGamesScraped    *int      `json:"newGamesScraped"`
	GamesUpdated       *int      `json:"gamesUpdated"`
	GamesSkipped       *int      `json:"gamesSkipped"`
	Errors             *int      `json:"errors"`
	Blanks             *int      `json:"blanks"`
	SuccessRate        *float64  `json:"successRate"`
	StopReason         *string   `json:"stopReason"`
	LastErrorMessage   *string   `json:"lastErrorMessage"`
}

// ScraperMetrics is the aggregate read model for the scraper dashboard.
type ScraperMetrics struct {
	TotalURLs       int `json:"totalUrls"`
	ActiveURLs      int `json:"activeUrls"`
	DoNotScrapeURLs int `json:"doNotScrapeUrls"`
	JobsLast24h     int `json:"jobsLast24h"`
	ErrorsLast24h   int `json:"errorsLast24h"`
}

// SaveGameInput is the mutation input for persisting a tracked game.
type SaveGameInput struct {
	GameID   string `json:"gameId,omitempty"`
	EntityID string `json:"entityId"`
	VenueID  string `json:"venueId,omitempty"`
	URL      string `json:"url,omitempty"`
	S3Key    string `json:"s3Key,omitempty"`
	// Game carries the normalized record; typed loosely so the wire layer
	// does not depend on the domain package.
	Game                  interface{} `json:"game,omitempty"`
	VenueAssignmentStatus string      `json:"venueAssignmentStatus,omitempty"`
}

// VenueAssignment describes where the backend attached the saved game.
type VenueAssignment struct {
	VenueID    string  `json:"venueId"`
	VenueName  string  `json:"venueName"`
	Status     string  `json:"status"`
	Confidence float64 `json:"confidence"`
}

// SaveGameResult is the saveGame mutation response.
type SaveGameResult struct {
	Success                bool             `json:"success"`
	GameID                 string           `json:"gameId"`
	Action                 string           `json:"action"`
	Message                string           `json:"message"`
	Warnings               []string         `json:"warnings"`
	PlayerProcessingQueued bool             `json:"playerProcessingQueued"`
	PlayerProcessingReason string           `json:"playerProcessingReason"`
	VenueAssignment        *VenueAssignment `json:"venueAssignment"`
	FieldsUpdated          []string         `json:"fieldsUpdated"`
}

// ReassignmentStatus tracks a venue-reassignment background task.
type ReassignmentStatus struct {
	TaskID    string  `json:"taskId"`
	Status    string  `json:"status"`
	Processed int     `json:"processed"`
	Total     int     `json:"total"`
	Message   *string `json:"message"`
}

// VenueClone is one detected duplicate venue.
type VenueClone struct {
	VenueID   string  `json:"venueId"`
	VenueName string  `json:"venueName"`
	CloneOf   string  `json:"cloneOf"`
	Score     float64 `json:"score"`
}

// UpdateCandidateURL is one URL the backend wants re-scraped.
type UpdateCandidateURL struct {
	URL        string    `json:"url"`
	GameStatus string    `json:"gameStatus"`
	LastSeenAt *FlexTime `json:"lastSeenAt"`
}
