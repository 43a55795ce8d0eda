package tracker

import (
	"context"
	"fmt"
	"strings"

	"github.com/hoganho/kingsroom-sub004/internal/game"
	"github.com/hoganho/kingsroom-sub004/internal/gql"
)

// BulkResult is the outcome for one id in a range fetch. Failures are
// captured per item; one bad id does not stop the range.
type BulkResult struct {
	TournamentID int          `json:"tournamentId"`
	URL          string       `json:"url"`
	Record       *game.Record `json:"record,omitempty"`
	FromCache    bool         `json:"fromCache"`
	Err          string       `json:"error,omitempty"`
}

// BulkFetch iterates an inclusive tournament-id range, fetching each id's
// URL built from urlTemplate (which must contain one %d verb). The range
// stops early only on context cancellation.
func (t *Tracker) BulkFetch(ctx context.Context, entityID, urlTemplate string, startID, endID int) []BulkResult {
	if !strings.Contains(urlTemplate, "%d") {
		return []BulkResult{{Err: "url template missing %d verb"}}
	}

	results := make([]BulkResult, 0, endID-startID+1)
	for id := startID; id <= endID; id++ {
		if ctx.Err() != nil {
			break
		}
		url := fmt.Sprintf(urlTemplate, id)
		item := BulkResult{TournamentID: id, URL: url}

		res, err := t.backend.FetchTournamentData(ctx, url, gql.FetchOptions{
			ScraperAPIKey: t.scraperAPIKey,
			EntityID:      entityID,
		})
		if err == nil && res.Error != nil && *res.Error != "" {
			err = fmt.Errorf("%s", *res.Error)
		}
		if err != nil {
			item.Err = err.Error()
			t.log.WithField("url", url).WithError(err).Warn("bulk fetch item failed")
			results = append(results, item)
			continue
		}

		rec := game.Normalize(res.Game)
		rec.EntityID = entityID
		item.Record = &rec
		if res.FromCache != nil {
			item.FromCache = *res.FromCache
		}
		results = append(results, item)
	}
	return results
}
