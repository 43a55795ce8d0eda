// Package jobmon tracks a remote batch scrape job in real time. Updates are
// subscription-first with a polling fallback: one initial fetch on start and
// one reconciling fetch when the job goes stale. Fetches never overwrite
// state derived from subscription events.
package jobmon

import (
	"context"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/hoganho/kingsroom-sub004/internal/gql"
)

var runningStatuses = map[string]bool{
	"QUEUED":      true,
	"RUNNING":     true,
	"IN_PROGRESS": true,
	"PROCESSING":  true,
	"PENDING":     true,
}

var terminalStatuses = map[string]bool{
	"COMPLETED":         true,
	"FAILED":            true,
	"CANCELLED":         true,
	"TIMEOUT":           true,
	"STOPPED_NOT_FOUND": true,
	"STOPPED_BLANKS":    true,
	"STOPPED_MAX_ID":    true,
	"STOPPED_ERROR":     true,
	"STOPPED_MANUAL":    true,
}

// IsRunning reports whether a job status is in the running set.
func IsRunning(status string) bool { return runningStatuses[status] }

// IsTerminal reports whether a job status is terminal. Counters freeze once
// a job reaches a terminal status.
func IsTerminal(status string) bool { return terminalStatuses[status] }

// Stats are the job's monotonic counters. A regression in
// TotalURLsProcessed signals a worker restart.
type Stats struct {
	TotalURLsProcessed int `json:"totalUrlsProcessed"`
	NewGamesScraped    int `json:"newGamesScraped"`
	GamesUpdated       int `json:"gamesUpdated"`
	GamesSkipped       int `json:"gamesSkipped"`
	Errors             int `json:"errors"`
	Blanks             int `json:"blanks"`
}

// Snapshot is the merged local view of the tracked job.
type Snapshot struct {
	ID               string    `json:"id"`
	JobID            string    `json:"jobId"`
	Status           string    `json:"status"`
	StartTime        time.Time `json:"startTime"`
	EndTime          time.Time `json:"endTime"`
	StartID          int       `json:"startId"`
	EndID            int       `json:"endId"`
	CurrentID        int       `json:"currentId"`
	DurationSeconds  int       `json:"durationSeconds"`
	Stats            Stats     `json:"stats"`
	SuccessRate      float64   `json:"successRate"`
	StopReason       string    `json:"stopReason,omitempty"`
	LastErrorMessage string    `json:"lastErrorMessage,omitempty"`
}

// State is everything an observer can see about the monitor.
type State struct {
	HasJob             bool     `json:"hasJob"`
	Snapshot           Snapshot `json:"snapshot"`
	IsStale            bool     `json:"isStale"`
	StatsRegressed     bool     `json:"statsRegressed"`
	IsComplete         bool     `json:"isComplete"`
	DurationSeconds    int      `json:"durationSeconds"`
	SubscriptionActive bool     `json:"subscriptionActive"`
	Error              string   `json:"error,omitempty"`
}

// Fetcher fetches one job snapshot.
type Fetcher interface {
	GetScraperJob(ctx context.Context, id string) (*gql.ScraperJob, error)
}

// SubscribeFunc opens a progress-event stream for a job. The closer tears
// the stream down.
type SubscribeFunc func(ctx context.Context, jobID string) (events <-chan gql.ScraperJob, errs <-chan error, closer func(), err error)

// SubscribeVia adapts a gql.Subscriber to a SubscribeFunc.
func SubscribeVia(s *gql.Subscriber) SubscribeFunc {
	return func(ctx context.Context, jobID string) (<-chan gql.ScraperJob, <-chan error, func(), error) {
		sub, err := s.Subscribe(ctx, jobID)
		if err != nil {
			return nil, nil, nil, err
		}
		return sub.Events, sub.Errs, sub.Close, nil
	}
}

// Callbacks are surfaced liveness and completion signals. All are optional
// and invoked without the monitor lock held.
type Callbacks struct {
	// OnJobComplete fires at most once per job-id lifetime, after the status
	// turns terminal.
	OnJobComplete func(Snapshot)
	// OnJobStale fires when a running job stops producing events for longer
	// than the stale threshold. Once per stale episode.
	OnJobStale func(Snapshot)
	// OnStatsRegression fires when a counter goes backwards, the signature
	// of a restarted worker.
	OnStatsRegression func(current, previous Snapshot)
}

// Args configures a Monitor.
type Args struct {
	Fetcher   Fetcher
	Subscribe SubscribeFunc
	Logger    *logrus.Logger
	Callbacks Callbacks

	// StaleAfter is how long a running job may go without events before it
	// is considered stale. Default 60s.
	StaleAfter time.Duration
	// StaleCheckEvery is the stale-detection poll interval. Default 10s.
	StaleCheckEvery time.Duration
	// TickEvery is the derived-duration ticker interval. Default 1s.
	TickEvery time.Duration
}

// Monitor tracks one job id at a time. Switching ids resets every piece of
// observable state before any new event applies.
type Monitor struct {
	fetcher   Fetcher
	subscribe SubscribeFunc
	log       *logrus.Logger
	cbs       Callbacks

	staleAfter      time.Duration
	staleCheckEvery time.Duration
	tickEvery       time.Duration
	now             func() time.Time

	mu                 sync.Mutex
	jobID              string
	cancel             context.CancelFunc
	snap               Snapshot
	hasSnap            bool
	prevSnap           Snapshot
	hasPrev            bool
	lastEventAt        time.Time
	subActive          bool
	subEventSeen       bool
	isStale            bool
	statsRegressed     bool
	completionNotified bool
	derivedDuration    int
	errMsg             string
}

// New returns a Monitor. Call SetJob to start tracking.
func New(a Args) *Monitor {
	m := &Monitor{
		fetcher:         a.Fetcher,
		subscribe:       a.Subscribe,
		log:             a.Logger,
		cbs:             a.Callbacks,
		staleAfter:      a.StaleAfter,
		staleCheckEvery: a.StaleCheckEvery,
		tickEvery:       a.TickEvery,
		now:             time.Now,
	}
	if m.staleAfter <= 0 {
		m.staleAfter = 60 * time.Second
	}
	if m.staleCheckEvery <= 0 {
		m.staleCheckEvery = 10 * time.Second
	}
	if m.tickEvery <= 0 {
		m.tickEvery = time.Second
	}
	return m
}

// SetJob switches the monitor to a new job id. An empty id stops tracking.
// All state from the previous job is discarded first.
func (m *Monitor) SetJob(ctx context.Context, jobID string) {
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.jobID = jobID
	m.snap = Snapshot{}
	m.hasSnap = false
	m.prevSnap = Snapshot{}
	m.hasPrev = false
	m.subActive = false
	m.subEventSeen = false
	m.isStale = false
	m.statsRegressed = false
	m.completionNotified = false
	m.derivedDuration = 0
	m.errMsg = ""
	m.lastEventAt = m.now()

	if jobID == "" {
		m.mu.Unlock()
		return
	}

	jobCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.mu.Unlock()

	go m.runSubscription(jobCtx, jobID)
	go m.fetchOnce(jobCtx, jobID)
	go m.staleLoop(jobCtx, jobID)
	go m.durationLoop(jobCtx, jobID)
}

// Stop ends tracking and releases all timers and streams.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// State returns the observable monitor state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{
		HasJob:             m.jobID != "",
		Snapshot:           m.snap,
		IsStale:            m.isStale,
		StatsRegressed:     m.statsRegressed,
		IsComplete:         m.hasSnap && IsTerminal(m.snap.Status),
		DurationSeconds:    m.currentDurationLocked(),
		SubscriptionActive: m.subActive,
		Error:              m.errMsg,
	}
}

func (m *Monitor) runSubscription(ctx context.Context, jobID string) {
	if m.subscribe == nil {
		return
	}
	events, errs, closer, err := m.subscribe(ctx, jobID)
	if err != nil {
		m.log.WithError(err).WithField("jobId", jobID).Warn("subscription unavailable, relying on fetch")
		return
	}
	defer closer()

	m.mu.Lock()
	live := m.jobID == jobID
	if live {
		m.subActive = true
	}
	m.mu.Unlock()
	if !live {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				continue
			}
			m.log.WithError(err).WithField("jobId", jobID).Warn("subscription stream fault")
			m.mu.Lock()
			m.subActive = false
			m.mu.Unlock()
			return
		case ev, ok := <-events:
			if !ok {
				m.mu.Lock()
				m.subActive = false
				m.mu.Unlock()
				return
			}
			m.ApplyEvent(jobID, ev)
		}
	}
}

// ApplyEvent merges one progress event into the snapshot. Events apply in
// arrival order; the wall-clock arrival time feeds stale detection.
func (m *Monitor) ApplyEvent(jobID string, ev gql.ScraperJob) {
	m.mu.Lock()
	if m.jobID != jobID {
		m.mu.Unlock()
		return
	}
	// Counters freeze once the job is terminal; late events are dropped.
	if m.hasSnap && IsTerminal(m.snap.Status) {
		m.mu.Unlock()
		return
	}

	prev := m.snap
	hadPrev := m.hasSnap
	prevProcessed := prev.Stats.TotalURLsProcessed

	mergeJob(&m.snap, ev)
	m.snap.JobID = jobID
	m.hasSnap = true
	m.subEventSeen = true
	m.lastEventAt = m.now()
	m.isStale = false

	var regressed bool
	if hadPrev {
		switch cur := m.snap.Stats.TotalURLsProcessed; {
		case cur < prevProcessed:
			m.statsRegressed = true
			regressed = true
		case cur > prevProcessed:
			m.statsRegressed = false
		}
	}
	m.prevSnap = prev
	m.hasPrev = hadPrev

	current := m.snap
	complete := IsTerminal(current.Status) && !m.completionNotified
	if complete {
		m.completionNotified = true
	}
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{
		"jobId":     jobID,
		"status":    current.Status,
		"processed": humanize.Comma(int64(current.Stats.TotalURLsProcessed)),
	}).Debug("job progress event")

	if regressed {
		m.log.WithFields(logrus.Fields{
			"jobId":    jobID,
			"current":  current.Stats.TotalURLsProcessed,
			"previous": prevProcessed,
		}).Warn("job counters regressed; worker likely restarted")
		if m.cbs.OnStatsRegression != nil {
			m.cbs.OnStatsRegression(current, prev)
		}
	}
	if complete && m.cbs.OnJobComplete != nil {
		m.cbs.OnJobComplete(current)
	}
}

// fetchOnce reconciles the snapshot from the read model. Applies only while
// no subscription event has been seen; subscription-derived fields win.
func (m *Monitor) fetchOnce(ctx context.Context, jobID string) {
	if m.fetcher == nil {
		return
	}
	job, err := m.fetcher.GetScraperJob(ctx, jobID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		m.mu.Lock()
		if m.jobID == jobID {
			m.errMsg = err.Error()
		}
		m.mu.Unlock()
		m.log.WithError(err).WithField("jobId", jobID).Warn("job fetch failed")
		return
	}

	m.mu.Lock()
	if m.jobID != jobID || m.subEventSeen {
		m.mu.Unlock()
		return
	}
	mergeJob(&m.snap, *job)
	m.snap.JobID = jobID
	m.hasSnap = true
	m.errMsg = ""

	current := m.snap
	complete := IsTerminal(current.Status) && !m.completionNotified
	if complete {
		m.completionNotified = true
	}
	m.mu.Unlock()

	if complete && m.cbs.OnJobComplete != nil {
		m.cbs.OnJobComplete(current)
	}
}

// staleLoop flags a running job as stale when events stop arriving, fires
// the callback once per episode, and issues a single reconciling fetch.
func (m *Monitor) staleLoop(ctx context.Context, jobID string) {
	ticker := time.NewTicker(m.staleCheckEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		m.mu.Lock()
		if m.jobID != jobID {
			m.mu.Unlock()
			return
		}
		eligible := m.hasSnap && IsRunning(m.snap.Status) && !m.isStale &&
			m.now().Sub(m.lastEventAt) > m.staleAfter
		if eligible {
			m.isStale = true
		}
		current := m.snap
		m.mu.Unlock()

		if !eligible {
			continue
		}
		m.log.WithField("jobId", jobID).Warn("job is stale; reconciling")
		if m.cbs.OnJobStale != nil {
			m.cbs.OnJobStale(current)
		}
		m.fetchOnce(ctx, jobID)
	}
}

// durationLoop derives a displayed duration from the job start time while
// the job runs without an active subscription.
func (m *Monitor) durationLoop(ctx context.Context, jobID string) {
	ticker := time.NewTicker(m.tickEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		m.mu.Lock()
		if m.jobID != jobID {
			m.mu.Unlock()
			return
		}
		if m.subActive || (m.hasSnap && IsTerminal(m.snap.Status)) {
			m.mu.Unlock()
			return
		}
		if m.hasSnap && IsRunning(m.snap.Status) && !m.snap.StartTime.IsZero() {
			m.derivedDuration = deriveDuration(m.now(), m.snap.StartTime, m.snap.DurationSeconds)
		}
		m.mu.Unlock()
	}
}

// deriveDuration computes elapsed seconds since start, trusting a smaller
// server-reported value once the derived figure exceeds an hour.
func deriveDuration(now, start time.Time, serverSeconds int) int {
	derived := int(now.Sub(start) / time.Second)
	if derived < 0 {
		derived = 0
	}
	if derived > 3600 && serverSeconds > 0 && serverSeconds < derived {
		return serverSeconds
	}
	return derived
}

func (m *Monitor) currentDurationLocked() int {
	if m.snap.DurationSeconds > 0 && (m.subActive || m.subEventSeen) {
		return m.snap.DurationSeconds
	}
	if m.derivedDuration > 0 {
		return m.derivedDuration
	}
	return m.snap.DurationSeconds
}

// mergeJob applies the non-null wire fields onto the snapshot.
func mergeJob(dst *Snapshot, src gql.ScraperJob) {
	if src.ID != "" {
		dst.ID = src.ID
	}
	if src.Status != nil {
		dst.Status = *src.Status
	}
	if src.StartTime != nil && !src.StartTime.IsZero() {
		dst.StartTime = src.StartTime.Time
	}
	if src.EndTime != nil && !src.EndTime.IsZero() {
		dst.EndTime = src.EndTime.Time
	}
	if src.StartID != nil {
		dst.StartID = *src.StartID
	}
	if src.EndID != nil {
		dst.EndID = *src.EndID
	}
	if src.CurrentID != nil {
		dst.CurrentID = *src.CurrentID
	}
	if src.DurationSeconds != nil {
		dst.DurationSeconds = *src.DurationSeconds
	}
	if src.TotalURLsProcessed != nil {
		dst.Stats.TotalURLsProcessed = *src.TotalURLsProcessed
	}
	if src.NewGamesScraped != nil {
		dst.Stats.NewGamesScraped = *src.NewGamesScraped
	}
	if src.GamesUpdated != nil {
		dst.Stats.GamesUpdated = *src.GamesUpdated
	}
	if src.GamesSkipped != nil {
		dst.Stats.GamesSkipped = *src.GamesSkipped
	}
	if src.Errors != nil {
		dst.Stats.Errors = *src.Errors
	}
	if src.Blanks != nil {
		dst.Stats.Blanks = *src.Blanks
	}
	if src.SuccessRate != nil {
		dst.SuccessRate = *src.SuccessRate
	}
	if src.StopReason != nil {
		dst.StopReason = *src.StopReason
	}
	if src.LastErrorMessage != nil {
		dst.LastErrorMessage = *src.LastErrorMessage
	}
}
