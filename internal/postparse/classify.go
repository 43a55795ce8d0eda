package postparse

import (
	"regexp"
	"strings"
	"time"
)

const (
	weightHigh   = 3
	weightMedium = 1
)

type pattern struct {
	name   string
	re     *regexp.Regexp
	weight int
}

// Result patterns. HIGH patterns are strong signals of a finished
// tournament; MEDIUM ones merely lean that way.
var resultPatterns = []pattern{
	{"placementWithPrize", regexp.MustCompile(`(?i)\b(?:1st|2nd|3rd|first|second|third)\b[^\n]{0,40}?\$[\d,]+`), weightHigh},
	{"multiplePodium", regexp.MustCompile(`(?s)🥇.*[🥈🥉]|(?i:\b1st\b.*\b2nd\b)`), weightHigh},
	{"trophyWithAmount", regexp.MustCompile(`🏆[^\n]{0,40}\$[\d,]+`), weightHigh},
	{"congratsWinner", regexp.MustCompile(`(?i)\bcongrat\w*\b`), weightHigh},
	{"finalTable", regexp.MustCompile(`(?i)\bfinal\s+table\b`), weightMedium},
	{"fieldSize", regexp.MustCompile(`(?i)\b\d+\s+(?:entries|runners|players)\b`), weightMedium},
	{"barePlacement", regexp.MustCompile(`(?i)\b(?:1st|2nd|3rd)\s+place\b`), weightMedium},
	{"tookItDown", regexp.MustCompile(`(?i)\b(?:took\s+it\s+down|takes\s+it\s+down|taking\s+down)\b`), weightMedium},
}

// Promotional patterns for upcoming games.
var promoPatterns = []pattern{
	{"upcomingDay", regexp.MustCompile(`(?i)\b(?:this|next)\s+(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`), weightHigh},
	{"buyInAnnouncement", regexp.MustCompile(`(?i)buy-?in:\s*\$?[\d,]+`), weightHigh},
	{"entryPrice", regexp.MustCompile(`(?i)\$[\d,]+\s*(?:buy-?in|entry)\b`), weightHigh},
	{"lateReg", regexp.MustCompile(`(?i)\blate\s+reg(?:istration)?\b`), weightHigh},
	{"joinUs", regexp.MustCompile(`(?i)\bjoin\s+us\b`), weightHigh},
	{"guaranteedMention", regexp.MustCompile(`(?i)\b(?:gtd|guaranteed?)\b`), weightMedium},
	{"prizePoolMention", regexp.MustCompile(`(?i)\bprize\s*pool\b`), weightMedium},
	{"structureInfo", regexp.MustCompile(`(?i)\b(?:starting\s+stack|\d+k?\s+stack|\d+\s*min(?:ute)?\s+levels?)\b`), weightMedium},
}

// urlPattern strips links before scoring so query strings cannot pollute
// the pattern matches.
var urlPattern = regexp.MustCompile(`https?://\S+`)

// classification is the scored verdict for one post body.
type classification struct {
	Type        PostType
	Confidence  int
	ResultScore int
	PromoScore  int
	Matched     []string
}

// classify scores the content against both pattern sets and applies the
// tie-break rules. When both scores qualify and result >= promo, the post
// is a RESULT; confidence scales by 12 normally and 10 in the tie branch.
func classify(content string) classification {
	text := urlPattern.ReplaceAllString(content, " ")

	var c classification
	for _, p := range resultPatterns {
		if p.re.MatchString(text) {
			c.ResultScore += p.weight
			c.Matched = append(c.Matched, p.name)
		}
	}
	for _, p := range promoPatterns {
		if p.re.MatchString(text) {
			c.PromoScore += p.weight
			c.Matched = append(c.Matched, p.name)
		}
	}

	switch {
	case c.ResultScore >= weightHigh && c.ResultScore > c.PromoScore:
		c.Type = TypeResult
		c.Confidence = capConfidence(c.ResultScore * 12)
	case c.PromoScore >= weightHigh && c.PromoScore > c.ResultScore:
		c.Type = TypePromotional
		c.Confidence = capConfidence(c.PromoScore * 12)
	case c.ResultScore >= weightHigh && c.PromoScore >= weightHigh:
		// Equal qualifying scores lean RESULT.
		if c.ResultScore >= c.PromoScore {
			c.Type = TypeResult
			c.Confidence = capConfidence(c.ResultScore * 10)
		} else {
			c.Type = TypePromotional
			c.Confidence = capConfidence(c.PromoScore * 10)
		}
	default:
		c.Type = TypeGeneral
	}
	return c
}

func capConfidence(v int) int {
	if v > 100 {
		return 100
	}
	return v
}

// IsComment reports whether a raw post is a platform comment rather than a
// post. Comments are never classified further and never uploaded.
func IsComment(postID, url string) bool {
	return strings.HasPrefix(postID, "post_") || strings.Contains(url, "comment_id=")
}

// ParseSocialPost turns a raw manifest post into its reviewable form.
func ParseSocialPost(raw RawPost, opts Options) ReviewablePost {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	post := ReviewablePost{
		PostID:         raw.PostID,
		URL:            raw.URL,
		Content:        raw.Content,
		Author:         raw.Author,
		Platform:       raw.Platform,
		PostedAt:       resolvePostedAt(raw, now),
		ImageCount:     raw.ImageCount,
		AttachmentURLs: raw.ImageURLs,
		Engagement:     Engagement{Likes: raw.Likes, Comments: raw.Comments, Shares: raw.Shares},
		Metadata:       Metadata{GameTags: []string{}},
		Placements:     []Placement{},
		Prizes:         []Prize{},
	}

	if IsComment(raw.PostID, raw.URL) {
		post.IsComment = true
		post.PostType = TypeComment
		return post
	}

	c := classify(raw.Content)
	post.PostType = c.Type
	post.Confidence = c.Confidence
	post.ResultScore = c.ResultScore
	post.PromoScore = c.PromoScore
	post.MatchedPatterns = c.Matched

	post.Placements = ExtractPlacements(raw.Content)
	post.Prizes = ExtractPrizes(raw.Content)
	post.Metadata = ExtractTournamentMetadata(raw.Content)
	post.VenueMatch = MatchVenue(raw.Content)

	return post
}

// ParseSocialPosts is the batch wrapper over ParseSocialPost.
func ParseSocialPosts(raws []RawPost, opts Options) []ReviewablePost {
	out := make([]ReviewablePost, 0, len(raws))
	for _, raw := range raws {
		out = append(out, ParseSocialPost(raw, opts))
	}
	return out
}
