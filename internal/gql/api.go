package gql

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// API wraps the consumed operation surface with typed methods over an
// Executor. Consumers depend on the narrow slices of this they need.
type API struct {
	exec Executor
}

// NewAPI returns an API over the given executor.
func NewAPI(exec Executor) *API {
	return &API{exec: exec}
}

// FetchOptions tune a live tournament fetch.
type FetchOptions struct {
	ForceRefresh  bool
	ScraperAPIKey string
	EntityID      string
}

// FetchTournamentData runs a live fetch for a tournament URL. The backend may
// transparently serve cached content; the result's FromCache flag is
// authoritative.
func (a *API) FetchTournamentData(ctx context.Context, url string, opts FetchOptions) (*FetchResult, error) {
	vars := map[string]interface{}{
		"url":          url,
		"forceRefresh": opts.ForceRefresh,
	}
	if opts.ScraperAPIKey != "" {
		vars["scraperApiKey"] = opts.ScraperAPIKey
	}
	if opts.EntityID != "" {
		vars["entityId"] = opts.EntityID
	}
	var resp struct {
		FetchTournamentData *FetchResult `json:"fetchTournamentData"`
	}
	if err := a.exec.Run(ctx, queryFetchTournamentData, vars, &resp); err != nil {
		return nil, err
	}
	if resp.FetchTournamentData == nil {
		return nil, errors.New("empty fetchTournamentData response")
	}
	return resp.FetchTournamentData, nil
}

// ReScrapeFromCache replays a stored page by its content key.
func (a *API) ReScrapeFromCache(ctx context.Context, s3Key string, saveToDatabase bool) (*FetchResult, error) {
	vars := map[string]interface{}{
		"input": map[string]interface{}{
			"s3Key":          s3Key,
			"saveToDatabase": saveToDatabase,
		},
	}
	var resp struct {
		ReScrapeFromCache *FetchResult `json:"reScrapeFromCache"`
	}
	if err := a.exec.Run(ctx, queryReScrapeFromCache, vars, &resp); err != nil {
		return nil, err
	}
	if resp.ReScrapeFromCache == nil {
		return nil, errors.New("empty reScrapeFromCache response")
	}
	return resp.ReScrapeFromCache, nil
}

// SaveGame persists a tracked game.
func (a *API) SaveGame(ctx context.Context, in SaveGameInput) (*SaveGameResult, error) {
	var resp struct {
		SaveGame *SaveGameResult `json:"saveGame"`
	}
	if err := a.exec.Run(ctx, querySaveGame, map[string]interface{}{"input": in}, &resp); err != nil {
		return nil, err
	}
	if resp.SaveGame == nil {
		return nil, errors.New("empty saveGame response")
	}
	return resp.SaveGame, nil
}

// ScrapeURLByURL looks up the knowledge-base snapshot for a URL. A missing
// record returns (nil, nil).
func (a *API) ScrapeURLByURL(ctx context.Context, url string) (*ScrapeURLRecord, error) {
	var resp struct {
		ScrapeURLByURL *ScrapeURLRecord `json:"scrapeURLByURL"`
	}
	if err := a.exec.Run(ctx, queryScrapeURLByURL, map[string]interface{}{"url": url}, &resp); err != nil {
		return nil, err
	}
	return resp.ScrapeURLByURL, nil
}

// SearchScrapeURLs searches the knowledge base.
func (a *API) SearchScrapeURLs(ctx context.Context, term string, limit int) ([]ScrapeURLRecord, error) {
	var resp struct {
		SearchScrapeURLs []ScrapeURLRecord `json:"searchScrapeURLs"`
	}
	vars := map[string]interface{}{"term": term, "limit": limit}
	if err := a.exec.Run(ctx, querySearchScrapeURLs, vars, &resp); err != nil {
		return nil, err
	}
	return resp.SearchScrapeURLs, nil
}

// GetScraperJob fetches one job snapshot via the minimal read model.
func (a *API) GetScraperJob(ctx context.Context, id string) (*ScraperJob, error) {
	var resp struct {
		GetScraperJobMinimal *ScraperJob `json:"getScraperJobMinimal"`
	}
	if err := a.exec.Run(ctx, queryScraperJobMinimal, map[string]interface{}{"id": id}, &resp); err != nil {
		return nil, err
	}
	if resp.GetScraperJobMinimal == nil {
		return nil, errors.Errorf("scraper job %s not found", id)
	}
	return resp.GetScraperJobMinimal, nil
}

// GetScraperJobsReport lists recent jobs. A field error degrades to an empty
// list: the report is a dashboard read and must not break consumers.
func (a *API) GetScraperJobsReport(ctx context.Context, limit int) ([]ScraperJob, error) {
	var resp struct {
		GetScraperJobsReportMinimal []ScraperJob `json:"getScraperJobsReportMinimal"`
	}
	if err := a.exec.Run(ctx, queryScraperJobsReportMinimal, map[string]interface{}{"limit": limit}, &resp); err != nil {
		if IsFieldError(err) {
			return []ScraperJob{}, nil
		}
		return nil, err
	}
	return resp.GetScraperJobsReportMinimal, nil
}

// GetScraperMetrics fetches the aggregate scraper metrics.
func (a *API) GetScraperMetrics(ctx context.Context) (*ScraperMetrics, error) {
	var resp struct {
		GetScraperMetrics *ScraperMetrics `json:"getScraperMetrics"`
	}
	if err := a.exec.Run(ctx, queryScraperMetrics, nil, &resp); err != nil {
		return nil, err
	}
	return resp.GetScraperMetrics, nil
}

// GetUpdateCandidateURLs lists URLs the backend wants re-scraped.
func (a *API) GetUpdateCandidateURLs(ctx context.Context, limit int) ([]UpdateCandidateURL, error) {
	var resp struct {
		GetUpdateCandidateURLs []UpdateCandidateURL `json:"getUpdateCandidateURLs"`
	}
	if err := a.exec.Run(ctx, queryUpdateCandidateURLs, map[string]interface{}{"limit": limit}, &resp); err != nil {
		return nil, err
	}
	return resp.GetUpdateCandidateURLs, nil
}

// StartScraperJob starts a batch scrape over an id range and returns the
// job id to monitor.
func (a *API) StartScraperJob(ctx context.Context, startID, endID int, entityID string) (string, error) {
	vars := map[string]interface{}{"startId": startID, "endId": endID}
	if entityID != "" {
		vars["entityId"] = entityID
	}
	var resp struct {
		StartScraperJob *ScraperJob `json:"startScraperJob"`
	}
	if err := a.exec.Run(ctx, queryStartScraperJob, vars, &resp); err != nil {
		return "", err
	}
	if resp.StartScraperJob == nil {
		return "", errors.New("empty startScraperJob response")
	}
	return resp.StartScraperJob.ID, nil
}

// CancelScraperJob requests cancellation of a running job.
func (a *API) CancelScraperJob(ctx context.Context, id string) error {
	var resp struct {
		CancelScraperJob *ScraperJob `json:"cancelScraperJob"`
	}
	return a.exec.Run(ctx, queryCancelScraperJob, map[string]interface{}{"id": id}, &resp)
}

// ModifyScrapeURLStatus flips the do-not-scrape flag for one URL.
func (a *API) ModifyScrapeURLStatus(ctx context.Context, url string, doNotScrape bool) error {
	var resp struct {
		ModifyScrapeURLStatus *ScrapeURLRecord `json:"modifyScrapeURLStatus"`
	}
	vars := map[string]interface{}{"url": url, "doNotScrape": doNotScrape}
	return a.exec.Run(ctx, queryModifyScrapeURLStatus, vars, &resp)
}

// BulkModifyScrapeURLs flips the do-not-scrape flag for many URLs and returns
// the number modified.
func (a *API) BulkModifyScrapeURLs(ctx context.Context, urls []string, doNotScrape bool) (int, error) {
	var resp struct {
		BulkModifyScrapeURLs struct {
			Modified int `json:"modified"`
		} `json:"bulkModifyScrapeURLs"`
	}
	vars := map[string]interface{}{"urls": urls, "doNotScrape": doNotScrape}
	if err := a.exec.Run(ctx, queryBulkModifyScrapeURLs, vars, &resp); err != nil {
		return 0, err
	}
	return resp.BulkModifyScrapeURLs.Modified, nil
}

// ReassignGameVenue moves one game to another venue; returns the background
// task handle.
func (a *API) ReassignGameVenue(ctx context.Context, gameID, venueID string) (*ReassignmentStatus, error) {
	var resp struct {
		ReassignGameVenue *ReassignmentStatus `json:"reassignGameVenue"`
	}
	vars := map[string]interface{}{"gameId": gameID, "venueId": venueID}
	if err := a.exec.Run(ctx, queryReassignGameVenue, vars, &resp); err != nil {
		return nil, err
	}
	return resp.ReassignGameVenue, nil
}

// BulkReassignGameVenues moves many games to another venue.
func (a *API) BulkReassignGameVenues(ctx context.Context, gameIDs []string, venueID string) (*ReassignmentStatus, error) {
	var resp struct {
		BulkReassignGameVenues *ReassignmentStatus `json:"bulkReassignGameVenues"`
	}
	vars := map[string]interface{}{"gameIds": gameIDs, "venueId": venueID}
	if err := a.exec.Run(ctx, queryBulkReassignGameVenues, vars, &resp); err != nil {
		return nil, err
	}
	return resp.BulkReassignGameVenues, nil
}

// GetReassignmentStatus polls a reassignment task once.
func (a *API) GetReassignmentStatus(ctx context.Context, taskID string) (*ReassignmentStatus, error) {
	var resp struct {
		GetReassignmentStatus *ReassignmentStatus `json:"getReassignmentStatus"`
	}
	if err := a.exec.Run(ctx, queryReassignmentStatus, map[string]interface{}{"taskId": taskID}, &resp); err != nil {
		return nil, err
	}
	return resp.GetReassignmentStatus, nil
}

// reassignmentTerminal holds the states a reassignment task stops in.
var reassignmentTerminal = map[string]bool{
	"COMPLETED": true,
	"FAILED":    true,
	"CANCELLED": true,
}

// PollReassignment polls a reassignment task until it reaches a terminal
// state or the context ends.
func (a *API) PollReassignment(ctx context.Context, taskID string, interval time.Duration) (*ReassignmentStatus, error) {
	for {
		st, err := a.GetReassignmentStatus(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if st != nil && reassignmentTerminal[st.Status] {
			return st, nil
		}
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-time.After(interval):
		}
	}
}

// GetVenueClones lists detected duplicate venues for an entity.
func (a *API) GetVenueClones(ctx context.Context, entityID string) ([]VenueClone, error) {
	var resp struct {
		GetVenueClones []VenueClone `json:"getVenueClones"`
	}
	if err := a.exec.Run(ctx, queryVenueClones, map[string]interface{}{"entityId": entityID}, &resp); err != nil {
		return nil, err
	}
	return resp.GetVenueClones, nil
}

// FindVenueForEntity suggests a venue match for a scraped venue name.
func (a *API) FindVenueForEntity(ctx context.Context, entityID, name string) (*VenueMatchPayload, error) {
	var resp struct {
		FindVenueForEntity *VenueMatchPayload `json:"findVenueForEntity"`
	}
	vars := map[string]interface{}{"entityId": entityID, "name": name}
	if err := a.exec.Run(ctx, queryFindVenueForEntity, vars, &resp); err != nil {
		return nil, err
	}
	return resp.FindVenueForEntity, nil
}
