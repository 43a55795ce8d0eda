// Package postparse classifies social-media posts about tournaments and
// extracts placements, prizes, and metadata from their text. Everything in
// this package is pure: no I/O, no clocks beyond the injected one.
package postparse

import "time"

// PostType is the classifier's verdict for one post.
type PostType string

const (
	TypeResult      PostType = "RESULT"
	TypePromotional PostType = "PROMOTIONAL"
	TypeGeneral     PostType = "GENERAL"
	TypeComment     PostType = "COMMENT"
)

// Placement is a rank-name-prize tuple extracted from post text.
type Placement struct {
	Place    int     `json:"place"`
	Name     string  `json:"name"`
	Prize    float64 `json:"prize,omitempty"`
	HasPrize bool    `json:"hasPrize"`
}

// Prize is one dollar amount with its surrounding context window.
type Prize struct {
	Amount  float64 `json:"amount"`
	Context string  `json:"context"`
}

// Metadata holds tournament facts recognized in the text.
type Metadata struct {
	Entries        *int     `json:"entries,omitempty"`
	BuyIn          *float64 `json:"buyIn,omitempty"`
	PrizePool      *float64 `json:"prizePool,omitempty"`
	GameTags       []string `json:"gameTags"`
	EventNumber    *int     `json:"eventNumber,omitempty"`
	TournamentName string   `json:"tournamentName,omitempty"`
}

// VenueMatch is a recognized venue alias.
type VenueMatch struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Engagement holds the platform's interaction counts.
type Engagement struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
}

// AttachmentDetail is one attachment entry from a scraped manifest.
type AttachmentDetail struct {
	LocalPath string `json:"localPath"`
	URL       string `json:"url,omitempty"`
}

// RawPost is a social post as it appears in a scrape manifest. Timestamp
// fields are loosely typed on purpose: manifests carry strings, seconds,
// and milliseconds interchangeably.
type RawPost struct {
	PostID             string             `json:"postId"`
	URL                string             `json:"url"`
	Content            string             `json:"content"`
	Author             string             `json:"author"`
	Platform           string             `json:"platform"`
	PostedAt           interface{}        `json:"postedAt"`
	CreatedAt          interface{}        `json:"createdAt"`
	Timestamp          interface{}        `json:"timestamp"`
	ExtractedDate      string             `json:"extractedDate"`
	ScrapedAt          interface{}        `json:"scrapedAt"`
	ImageCount         int                `json:"imageCount"`
	ImageURLs          []string           `json:"imageUrls"`
	Likes              int                `json:"likes"`
	Comments           int                `json:"comments"`
	Shares             int                `json:"shares"`
	Attachments        []string           `json:"_attachments"`
	AttachmentsDetails []AttachmentDetail `json:"attachmentsDetails"`
}

// ReviewablePost is the parsed, reviewable form of a post.
type ReviewablePost struct {
	PostID          string      `json:"postId"`
	URL             string      `json:"url"`
	Content         string      `json:"content"`
	Author          string      `json:"author"`
	Platform        string      `json:"platform,omitempty"`
	PostedAt        time.Time   `json:"postedAt"`
	PostType        PostType    `json:"postType"`
	Confidence      int         `json:"confidence"`
	IsComment       bool        `json:"isComment"`
	ResultScore     int         `json:"resultScore"`
	PromoScore      int         `json:"promoScore"`
	MatchedPatterns []string    `json:"matchedPatterns"`
	Placements      []Placement `json:"placements"`
	Prizes          []Prize     `json:"prizes"`
	Metadata        Metadata    `json:"metadata"`
	VenueMatch      *VenueMatch `json:"venueMatch,omitempty"`
	ImageCount      int         `json:"imageCount"`
	AttachmentFiles []string    `json:"attachmentFiles,omitempty"`
	AttachmentURLs  []string    `json:"attachmentUrls,omitempty"`
	Engagement      Engagement  `json:"engagement"`
	Selected        bool        `json:"selected"`
}

// Options tune parsing. Now supplies the fallback posted-at clock.
type Options struct {
	Now func() time.Time
}
