package postparse

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	maxPrizeAmount = 10_000_000
	contextWindow  = 60
)

var prizePattern = regexp.MustCompile(`\$(\d{1,3}(?:,\d{3})*|\d+)(\.\d{2})?`)

// ExtractPrizes finds every dollar amount in (0, 10M), sorted descending,
// each with a window of surrounding text for review context.
func ExtractPrizes(content string) []Prize {
	prizes := []Prize{}
	for _, loc := range prizePattern.FindAllStringSubmatchIndex(content, -1) {
		raw := content[loc[0]:loc[1]]
		amount, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimPrefix(raw, "$"), ",", ""), 64)
		if err != nil || amount <= 0 || amount >= maxPrizeAmount {
			continue
		}
		prizes = append(prizes, Prize{
			Amount:  amount,
			Context: contextAround(content, loc[0], loc[1]),
		})
	}
	sort.SliceStable(prizes, func(i, j int) bool { return prizes[i].Amount > prizes[j].Amount })
	return prizes
}

// contextAround returns up to contextWindow characters centered on the
// match, clamped to the content and cut at rune boundaries.
func contextAround(content string, start, end int) string {
	pad := (contextWindow - (end - start)) / 2
	if pad < 0 {
		pad = 0
	}
	lo := start - pad
	if lo < 0 {
		lo = 0
	}
	hi := end + pad
	if hi > len(content) {
		hi = len(content)
	}
	for lo > 0 && !isRuneStart(content[lo]) {
		lo--
	}
	for hi < len(content) && !isRuneStart(content[hi]) {
		hi++
	}
	return strings.TrimSpace(content[lo:hi])
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

var (
	ordinalPlacement = regexp.MustCompile(`\b(1st|1ST|2nd|2ND|3rd|3RD|[4-9]th|[4-9]TH|10th|10TH|[Ff]irst|[Ss]econd|[Tt]hird)\b[\s:–—-]*([A-Z][a-zA-Z'’.]+(?:\s+[A-Z][a-zA-Z'’.]+){0,2})(?:[^$\n]{0,20}\$((?:\d{1,3}(?:,\d{3})*|\d+)(?:\.\d{2})?))?`)
	podiumPlacement  = regexp.MustCompile(`(🥇|🥈|🥉)\s*([A-Z][a-zA-Z'’.]+(?:\s+[A-Z][a-zA-Z'’.]+){0,2})(?:[^$\n]{0,20}\$((?:\d{1,3}(?:,\d{3})*|\d+)(?:\.\d{2})?))?`)
)

var podiumPlaces = map[string]int{"🥇": 1, "🥈": 2, "🥉": 3}

// ExtractPlacements recognizes "1st: John – $1,000" style lines and the
// podium-emoji equivalent. Output is deduplicated per place and sorted
// ascending.
func ExtractPlacements(content string) []Placement {
	var found []Placement

	for _, m := range ordinalPlacement.FindAllStringSubmatch(content, -1) {
		place := placeOfOrdinal(m[1])
		if place == 0 {
			continue
		}
		found = append(found, placementOf(place, m[2], m[3]))
	}
	for _, m := range podiumPlacement.FindAllStringSubmatch(content, -1) {
		found = append(found, placementOf(podiumPlaces[m[1]], m[2], m[3]))
	}

	seen := map[int]bool{}
	out := []Placement{}
	sort.SliceStable(found, func(i, j int) bool { return found[i].Place < found[j].Place })
	for _, p := range found {
		if seen[p.Place] {
			continue
		}
		seen[p.Place] = true
		out = append(out, p)
	}
	return out
}

func placementOf(place int, name, prize string) Placement {
	p := Placement{Place: place, Name: strings.TrimSpace(name)}
	if prize != "" {
		if amount, err := strconv.ParseFloat(strings.ReplaceAll(prize, ",", ""), 64); err == nil {
			p.Prize = amount
			p.HasPrize = true
		}
	}
	return p
}

func placeOfOrdinal(token string) int {
	switch strings.ToLower(token) {
	case "first":
		return 1
	case "second":
		return 2
	case "third":
		return 3
	}
	digits := strings.TrimRight(strings.ToLower(token), "stndrh")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

var (
	entriesPattern   = regexp.MustCompile(`(?i)\b(\d+)\s*(?:entries|runners|players)\b`)
	buyInPattern     = regexp.MustCompile(`(?i)buy-?in:?\s*\$([\d,]+(?:\.\d{2})?)|\$([\d,]+(?:\.\d{2})?)\s*buy-?in`)
	prizePoolPattern = regexp.MustCompile(`(?i)prize\s*pool[:\s]*\$([\d,]+(?:\.\d{2})?)`)
	eventNumPattern  = regexp.MustCompile(`(?i)\bevent\s*#?\s*(\d+)\b`)
	tournamentName   = regexp.MustCompile(`([A-Z][^\n.!?]{4,97}?(?:Championship|Classic|Series|Open|Festival|Main Event|Cup))\b`)
)

var gameTagPatterns = []struct {
	tag string
	re  *regexp.Regexp
}{
	{"NLH", regexp.MustCompile(`(?i)\b(?:nlh|nlhe|no[\s-]?limit)\b`)},
	{"PLO8", regexp.MustCompile(`(?i)\bplo8\b`)},
	{"PLO", regexp.MustCompile(`(?i)\bplo[56]?\b`)},
	{"Mixed", regexp.MustCompile(`(?i)\bmixed\b`)},
	{"Bounty", regexp.MustCompile(`(?i)\b(?:bounty|knockout|ko)\b`)},
	{"Turbo", regexp.MustCompile(`(?i)\bturbo\b`)},
	{"Deepstack", regexp.MustCompile(`(?i)\bdeep\s?stack\b`)},
}

// ExtractTournamentMetadata pulls entry counts, amounts, game tags, event
// number, and a tournament name from post text.
func ExtractTournamentMetadata(content string) Metadata {
	md := Metadata{GameTags: []string{}}

	if m := entriesPattern.FindStringSubmatch(content); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			md.Entries = &n
		}
	}
	if m := buyInPattern.FindStringSubmatch(content); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64); err == nil {
			md.BuyIn = &v
		}
	}
	if m := prizePoolPattern.FindStringSubmatch(content); m != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
			md.PrizePool = &v
		}
	}
	for _, gt := range gameTagPatterns {
		if gt.re.MatchString(content) {
			md.GameTags = append(md.GameTags, gt.tag)
		}
	}
	if m := eventNumPattern.FindStringSubmatch(content); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			md.EventNumber = &n
		}
	}
	if m := tournamentName.FindStringSubmatch(content); m != nil {
		name := strings.TrimSpace(m[1])
		if len(name) >= 6 && len(name) <= 99 {
			md.TournamentName = name
		}
	}
	return md
}
