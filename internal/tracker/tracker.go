// Package tracker coordinates single-tournament fetches: knowledge-base
// pre-checks, cached-page replay versus live fetch, request deduplication,
// and the auto-refresh loop for in-progress games.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hoganho/kingsroom-sub004/internal/game"
	"github.com/hoganho/kingsroom-sub004/internal/gql"
	"github.com/hoganho/kingsroom-sub004/internal/knowledge"
)

// Source selects where a fetch reads from.
type Source string

const (
	SourceAuto  Source = "AUTO"
	SourceLive  Source = "LIVE"
	SourceCache Source = "CACHE"
)

// JobStatus is the lifecycle state of one tracked URL.
type JobStatus string

const (
	StatusFetching    JobStatus = "FETCHING"
	StatusReadyToSave JobStatus = "READY_TO_SAVE"
	StatusSaving      JobStatus = "SAVING"
	StatusDone        JobStatus = "DONE"
	StatusError       JobStatus = "ERROR"
)

// ErrClosed is returned once the tracker has been torn down.
var ErrClosed = errors.New("tracker closed")

// TrackedGame is the per-URL view state. Identity is the URL.
type TrackedGame struct {
	URL            string              `json:"url"`
	DataSource     Source              `json:"dataSource"`
	Status         JobStatus           `json:"status"`
	Error          string              `json:"error,omitempty"`
	Data           *game.Record        `json:"data,omitempty"`
	Derived        game.Derived        `json:"derived"`
	ExistingGameID string              `json:"existingGameId,omitempty"`
	LastFetchedAt  time.Time           `json:"lastFetchedAt"`
	PageKey        string              `json:"pageKey,omitempty"`
	FromCache      bool                `json:"fromCache"`
	AutoRefresh    bool                `json:"autoRefresh"`
	FetchCount     int                 `json:"fetchCount"`
	KnownStatus    string              `json:"knownStatus,omitempty"`
	KnownScrapedAt time.Time           `json:"knownScrapedAt,omitempty"`
	SaveResult     *gql.SaveGameResult `json:"saveResult,omitempty"`
}

// Backend is the slice of the GraphQL surface the tracker needs.
type Backend interface {
	FetchTournamentData(ctx context.Context, url string, opts gql.FetchOptions) (*gql.FetchResult, error)
	ReScrapeFromCache(ctx context.Context, s3Key string, saveToDatabase bool) (*gql.FetchResult, error)
	SaveGame(ctx context.Context, in gql.SaveGameInput) (*gql.SaveGameResult, error)
}

// KnowledgeBase is the optional pre-fetch lookup.
type KnowledgeBase interface {
	Lookup(ctx context.Context, url string) (*knowledge.Snapshot, error)
}

// Options tune one Track call.
type Options struct {
	ForceSource   Source
	StoredPageKey string
	ForceRefresh  bool
}

type inflightKey struct {
	url    string
	source Source
}

// Args configures a Tracker.
type Args struct {
	Backend       Backend
	KnowledgeBase KnowledgeBase
	Logger        *logrus.Logger
	ScraperAPIKey string
	// RefreshEvery is the auto-refresh interval; defaults to 2 minutes.
	RefreshEvery time.Duration
}

// Tracker owns the TrackedGame map and all per-URL refresh timers.
type Tracker struct {
	backend       Backend
	kb            KnowledgeBase
	log           *logrus.Logger
	scraperAPIKey string
	refreshEvery  time.Duration
	now           func() time.Time

	mu        sync.Mutex
	games     map[string]*TrackedGame
	inflight  map[inflightKey]struct{}
	timers    map[string]*time.Timer
	listeners []func(TrackedGame)
	closed    bool
}

// New returns a Tracker.
func New(a Args) *Tracker {
	refresh := a.RefreshEvery
	if refresh <= 0 {
		refresh = 2 * time.Minute
	}
	return &Tracker{
		backend:       a.Backend,
		kb:            a.KnowledgeBase,
		log:           a.Logger,
		scraperAPIKey: a.ScraperAPIKey,
		refreshEvery:  refresh,
		now:           time.Now,
		games:         make(map[string]*TrackedGame),
		inflight:      make(map[inflightKey]struct{}),
		timers:        make(map[string]*time.Timer),
	}
}

// Subscribe registers a listener invoked with a snapshot after every state
// change.
func (t *Tracker) Subscribe(fn func(TrackedGame)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

// Track fetches tournament data for a URL and records the result against
// the URL's TrackedGame. Overlapping calls for the same (url, forceSource)
// return immediately: the in-flight fetch owns the state.
func (t *Tracker) Track(ctx context.Context, url, entityID string, opts Options) error {
	if opts.ForceSource == "" {
		opts.ForceSource = SourceAuto
	}
	key := inflightKey{url: url, source: opts.ForceSource}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	if _, busy := t.inflight[key]; busy {
		t.mu.Unlock()
		return nil
	}
	t.inflight[key] = struct{}{}
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.inflight, key)
		t.mu.Unlock()
	}()

	t.update(url, func(g *TrackedGame) {
		g.Status = StatusFetching
		g.FetchCount++
		g.DataSource = SourceLive
		if opts.ForceSource == SourceCache {
			g.DataSource = SourceCache
		}
	})

	// Best-effort knowledge-base pre-check. Failure here never aborts the
	// fetch.
	var known *knowledge.Snapshot
	if t.kb != nil && opts.ForceSource != SourceLive && opts.StoredPageKey == "" {
		snap, err := t.kb.Lookup(ctx, url)
		if err != nil {
			t.log.WithError(err).WithField("url", url).Warn("knowledge-base lookup failed")
		} else if snap != nil {
			known = snap
			t.update(url, func(g *TrackedGame) {
				g.KnownStatus = snap.LastStatus
				g.KnownScrapedAt = snap.LastScrapedAt
			})
		}
	}

	pageKey := opts.StoredPageKey
	if opts.ForceSource == SourceCache && pageKey == "" && known != nil {
		pageKey = known.LatestS3Key
	}

	var (
		res       *gql.FetchResult
		err       error
		fromCache bool
	)
	if opts.ForceSource == SourceCache && pageKey != "" {
		res, err = t.backend.ReScrapeFromCache(ctx, pageKey, false)
		fromCache = true
	} else {
		res, err = t.backend.FetchTournamentData(ctx, url, gql.FetchOptions{
			ForceRefresh:  opts.ForceRefresh,
			ScraperAPIKey: t.scraperAPIKey,
			EntityID:      entityID,
		})
	}
	if err == nil && res.Error != nil && *res.Error != "" {
		err = errors.New(*res.Error)
	}
	if err != nil {
		if gql.IsDoNotScrape(err) {
			t.log.WithField("url", url).Warn("scraping is disabled for url")
		} else {
			t.log.WithError(err).WithField("url", url).Error("fetch failed")
		}
		t.setError(url, err)
		return err
	}

	rec := game.Normalize(res.Game)
	rec.EntityID = entityID
	derived := game.Derive(rec)

	// The payload is authoritative for the cache flag: a live fetch may be
	// transparently served from cache by the backend.
	if res.FromCache != nil {
		fromCache = *res.FromCache
	}

	t.update(url, func(g *TrackedGame) {
		g.Status = StatusReadyToSave
		g.Error = ""
		g.Data = &rec
		g.Derived = derived
		g.ExistingGameID = rec.ExistingGameID
		g.FromCache = fromCache
		g.LastFetchedAt = t.now()
		if res.S3Key != nil && *res.S3Key != "" {
			g.PageKey = *res.S3Key
		}
	})

	if opts.ForceSource != SourceCache && t.shouldAutoRefresh(rec) {
		t.update(url, func(g *TrackedGame) { g.AutoRefresh = true })
		t.scheduleRefresh(url, entityID)
	} else {
		t.update(url, func(g *TrackedGame) { g.AutoRefresh = false })
		t.clearTimer(url)
	}

	return nil
}

// Refresh re-fetches a tracked URL on user request. This is the only path
// that retries a URL in the ERROR state.
func (t *Tracker) Refresh(ctx context.Context, url, entityID string, opts Options) error {
	opts.ForceRefresh = true
	return t.Track(ctx, url, entityID, opts)
}

// Save persists the tracked game's data via saveGame. A successful save
// finishes the lifecycle and cancels any auto-refresh timer.
func (t *Tracker) Save(ctx context.Context, url, venueID, entityID string) error {
	g, ok := t.Get(url)
	if !ok || g.Data == nil {
		return errors.Errorf("no fetched data for %s", url)
	}

	t.update(url, func(g *TrackedGame) { g.Status = StatusSaving })

	in := gql.SaveGameInput{
		GameID:   g.ExistingGameID,
		EntityID: entityID,
		VenueID:  venueID,
		URL:      url,
		S3Key:    g.PageKey,
		Game:     g.Data,
	}
	if g.Data.GameStatus == game.StatusNotPublished {
		in.VenueAssignmentStatus = game.VenueAssignmentStatusAutoAssigned
	}

	res, err := t.backend.SaveGame(ctx, in)
	if err != nil {
		t.setError(url, err)
		return err
	}
	if !res.Success {
		err := errors.Errorf("save rejected: %s", res.Message)
		t.setError(url, err)
		return err
	}

	t.update(url, func(g *TrackedGame) {
		g.Status = StatusDone
		g.Error = ""
		g.SaveResult = res
		g.AutoRefresh = false
		if res.GameID != "" {
			g.ExistingGameID = res.GameID
		}
	})
	t.clearTimer(url)
	return nil
}

// Remove forgets a tracked URL and cancels its refresh timer.
func (t *Tracker) Remove(url string) {
	t.clearTimer(url)
	t.mu.Lock()
	delete(t.games, url)
	t.mu.Unlock()
}

// Get returns a copy of a tracked game's state.
func (t *Tracker) Get(url string) (TrackedGame, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	g, ok := t.games[url]
	if !ok {
		return TrackedGame{}, false
	}
	return *g, true
}

// Snapshot returns copies of all tracked games.
func (t *Tracker) Snapshot() []TrackedGame {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TrackedGame, 0, len(t.games))
	for _, g := range t.games {
		out = append(out, *g)
	}
	return out
}

// Close cancels every timer and refuses further tracking.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	for url, timer := range t.timers {
		timer.Stop()
		delete(t.timers, url)
	}
}

// shouldAutoRefresh reports whether a fetched record represents a live or
// imminent game worth polling every refresh interval.
func (t *Tracker) shouldAutoRefresh(rec game.Record) bool {
	if rec.GameStatus.IsLive() {
		return true
	}
	if rec.GameStatus == game.StatusScheduled && rec.StartDateTime != nil {
		until := rec.StartDateTime.Sub(t.now())
		return until >= -time.Hour && until <= 2*time.Hour
	}
	return false
}

func (t *Tracker) scheduleRefresh(url, entityID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if timer, ok := t.timers[url]; ok {
		timer.Stop()
	}
	t.timers[url] = time.AfterFunc(t.refreshEvery, func() {
		// Auto-refresh always forces a live fetch; a successful refresh of a
		// still-live game re-arms the timer.
		if err := t.Track(context.Background(), url, entityID, Options{ForceSource: SourceLive}); err != nil {
			t.log.WithError(err).WithField("url", url).Warn("auto-refresh failed")
		}
	})
}

func (t *Tracker) clearTimer(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if timer, ok := t.timers[url]; ok {
		timer.Stop()
		delete(t.timers, url)
	}
}

func (t *Tracker) setError(url string, err error) {
	t.update(url, func(g *TrackedGame) {
		g.Status = StatusError
		g.Error = err.Error()
		g.AutoRefresh = false
	})
	t.clearTimer(url)
}

// update mutates a tracked game under the lock and notifies listeners with
// a copy afterwards. Creates the game on first touch.
func (t *Tracker) update(url string, fn func(*TrackedGame)) {
	t.mu.Lock()
	g, ok := t.games[url]
	if !ok {
		g = &TrackedGame{URL: url, DataSource: SourceLive}
		t.games[url] = g
	}
	fn(g)
	snapshot := *g
	listeners := make([]func(TrackedGame), len(t.listeners))
	copy(listeners, t.listeners)
	t.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}
