package postparse

import (
	"strconv"
	"time"
)

// epochSecondsCutoff distinguishes seconds from milliseconds: any numeric
// timestamp under 1e10 is seconds.
const epochSecondsCutoff = 1e10

// resolvePostedAt picks the post timestamp by priority: postedAt, createdAt,
// timestamp, extractedDate, scrapedAt, then the current time.
func resolvePostedAt(raw RawPost, now func() time.Time) time.Time {
	if t, ok := timeOfValue(raw.PostedAt); ok {
		return t
	}
	if t, ok := timeOfValue(raw.CreatedAt); ok {
		return t
	}
	if t, ok := timeOfValue(raw.Timestamp); ok {
		return t
	}
	if raw.ExtractedDate != "" {
		if t, ok := parseTimeString(raw.ExtractedDate); ok {
			return t
		}
	}
	if t, ok := timeOfValue(raw.ScrapedAt); ok {
		return t
	}
	return now().UTC()
}

// timeOfValue interprets a loosely typed manifest timestamp.
func timeOfValue(v interface{}) (time.Time, bool) {
	switch val := v.(type) {
	case nil:
		return time.Time{}, false
	case float64:
		if val <= 0 {
			return time.Time{}, false
		}
		return epochToTime(val), true
	case int64:
		return timeOfValue(float64(val))
	case int:
		return timeOfValue(float64(val))
	case string:
		if val == "" {
			return time.Time{}, false
		}
		if n, err := strconv.ParseFloat(val, 64); err == nil {
			return timeOfValue(n)
		}
		return parseTimeString(val)
	}
	return time.Time{}, false
}

func epochToTime(n float64) time.Time {
	if n < epochSecondsCutoff {
		return time.Unix(int64(n), 0).UTC()
	}
	return time.UnixMilli(int64(n)).UTC()
}

func parseTimeString(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
