package postparse

import "regexp"

// venueAliasConfidence is fixed: alias matching is a hint for the reviewer,
// not an assignment.
const venueAliasConfidence = 0.8

// venueAliases maps known room names and their common shorthands. Checked
// sequentially; the first hit wins.
var venueAliases = []struct {
	re   *regexp.Regexp
	name string
}{
	{regexp.MustCompile(`(?i)\bkings\s*room\b`), "Kings Room"},
	{regexp.MustCompile(`(?i)\bthe\s+star\b`), "The Star Poker Room"},
	{regexp.MustCompile(`(?i)\bcrown\s+poker\b`), "Crown Poker Room"},
	{regexp.MustCompile(`(?i)\baussie\s+millions\b`), "Crown Poker Room"},
	{regexp.MustCompile(`(?i)\bsky\s*city\b`), "SkyCity Poker Room"},
	{regexp.MustCompile(`(?i)\btreasury\s+(?:brisbane|casino)\b`), "Treasury Poker Room"},
}

// MatchVenue scans post text for a known venue alias.
func MatchVenue(content string) *VenueMatch {
	for _, alias := range venueAliases {
		if alias.re.MatchString(content) {
			return &VenueMatch{Name: alias.name, Confidence: venueAliasConfidence}
		}
	}
	return nil
}
