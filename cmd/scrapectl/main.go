// Command scrapectl drives the tournament scrape and ingest pipeline:
// single-URL fetches, bulk range fetches, batch job monitoring, and the
// social post upload pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/hoganho/kingsroom-sub004/internal/activity"
	"github.com/hoganho/kingsroom-sub004/internal/common/log"
	"github.com/hoganho/kingsroom-sub004/internal/config"
	"github.com/hoganho/kingsroom-sub004/internal/gql"
	"github.com/hoganho/kingsroom-sub004/internal/ingest"
	"github.com/hoganho/kingsroom-sub004/internal/jobmon"
	"github.com/hoganho/kingsroom-sub004/internal/knowledge"
	"github.com/hoganho/kingsroom-sub004/internal/postparse"
	"github.com/hoganho/kingsroom-sub004/internal/tracker"
	"github.com/hoganho/kingsroom-sub004/internal/web"
)

type flags struct {
	action       string
	url          string
	entityID     string
	venueID      string
	startID      int
	endID        int
	urlTemplate  string
	jobID        string
	dir          string
	accountID    string
	platform     string
	source       string
	pageKey      string
	minConf      int
	selectedOnly bool
	dryRun       bool
	serve        bool
	save         bool
}

func main() {
	_ = godotenv.Load()

	var f flags
	flag.StringVar(&f.action, "action", "", "one of: track, bulk, job-start, job-monitor, job-cancel, ingest, serve")
	flag.StringVar(&f.url, "url", "", "tournament URL to track")
	flag.StringVar(&f.entityID, "entity", "", "entity id")
	flag.StringVar(&f.venueID, "venue", "", "venue id")
	flag.IntVar(&f.startID, "start", 0, "first tournament id for bulk fetch or job start")
	flag.IntVar(&f.endID, "end", 0, "last tournament id for bulk fetch or job start")
	flag.StringVar(&f.urlTemplate, "url-template", "", "bulk fetch URL template containing one %d")
	flag.StringVar(&f.jobID, "job", "", "scraper job id to monitor or cancel")
	flag.StringVar(&f.dir, "dir", "", "directory of scraped post folders to ingest")
	flag.StringVar(&f.accountID, "account", "", "social account id for ingest")
	flag.StringVar(&f.platform, "platform", "facebook", "social platform for ingest")
	flag.StringVar(&f.source, "force-source", "", "force fetch source: LIVE or CACHE")
	flag.StringVar(&f.pageKey, "page-key", "", "stored page key for cached replay")
	flag.IntVar(&f.minConf, "min-confidence", 0, "skip posts classified below this confidence")
	flag.BoolVar(&f.selectedOnly, "selected-only", false, "upload only posts marked selected")
	flag.BoolVar(&f.dryRun, "dry-run", false, "report what would be uploaded without writing")
	flag.BoolVar(&f.serve, "serve", false, "also run the admin status server")
	flag.BoolVar(&f.save, "save", false, "save the fetched game after tracking")
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "init config:", err)
		os.Exit(1)
	}
	logger := log.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("init pipeline")
	}
	defer app.tracker.Close()

	if f.serve || f.action == "serve" {
		go app.serveAdmin(cfg.AdminAddr)
	}

	if err := app.run(ctx, f, cfg); err != nil {
		logger.WithError(err).Fatal("run")
	}
}

type app struct {
	log      *logrus.Logger
	api      *gql.API
	kb       *knowledge.Client
	tracker  *tracker.Tracker
	monitor  *jobmon.Monitor
	activity *activity.Client
	uploader *ingest.Uploader
}

func newApp(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*app, error) {
	client := gql.NewClient(gql.Args{
		Endpoint: cfg.GraphQLEndpoint,
		APIKey:   cfg.GraphQLAPIKey,
		Logger:   logger,
	})
	api := gql.NewAPI(client)
	kb := knowledge.New(api, logger)

	trk := tracker.New(tracker.Args{
		Backend:       api,
		KnowledgeBase: kb,
		Logger:        logger,
		ScraperAPIKey: cfg.ScraperAPIKey,
	})

	sub := &gql.Subscriber{
		URL:    wsEndpoint(cfg.GraphQLEndpoint),
		APIKey: cfg.GraphQLAPIKey,
		Logger: logger,
	}
	mon := jobmon.New(jobmon.Args{
		Fetcher:   api,
		Subscribe: jobmon.SubscribeVia(sub),
		Logger:    logger,
		Callbacks: jobmon.Callbacks{
			OnJobComplete: func(s jobmon.Snapshot) {
				logger.WithFields(logrus.Fields{
					"job":       s.JobID,
					"processed": humanize.Comma(int64(s.Stats.TotalURLsProcessed)),
				}).Info("scraper job complete")
			},
			OnJobStale: func(s jobmon.Snapshot) {
				logger.WithField("job", s.JobID).Warn("scraper job looks stale")
			},
			OnStatsRegression: func(cur, prev jobmon.Snapshot) {
				logger.WithFields(logrus.Fields{
					"current":  cur.Stats.TotalURLsProcessed,
					"previous": prev.Stats.TotalURLsProcessed,
				}).Warn("scraper job stats went backwards, workers likely restarted")
			},
		},
	})

	var store ingest.ObjectStore
	if cfg.AttachmentBucket != "" {
		s3store, err := ingest.NewS3Store(ctx, cfg.AWSRegion, cfg.AttachmentBucket)
		if err != nil {
			return nil, err
		}
		store = s3store
	}
	uploader := ingest.NewUploader(ingest.Args{
		Records: ingest.NewRecordStore(client),
		Store:   store,
		Logger:  logger,
		Prefix:  cfg.AttachmentPrefix,
	})

	return &app{
		log:      logger,
		api:      api,
		kb:       kb,
		tracker:  trk,
		monitor:  mon,
		activity: activity.New(client, logger),
		uploader: uploader,
	}, nil
}

func (a *app) run(ctx context.Context, f flags, cfg config.Config) error {
	switch f.action {
	case "track":
		return a.runTrack(ctx, f)
	case "bulk":
		return a.runBulk(ctx, f)
	case "job-start":
		return a.runJobStart(ctx, f)
	case "job-monitor":
		return a.runJobMonitor(ctx, f.jobID)
	case "job-cancel":
		if f.jobID == "" {
			return fmt.Errorf("job-cancel requires -job")
		}
		a.activity.RecordAsync(activity.Event{Kind: activity.KindJobCancel, Subject: f.jobID})
		return a.api.CancelScraperJob(ctx, f.jobID)
	case "ingest":
		return a.runIngest(ctx, f, cfg)
	case "serve":
		<-ctx.Done()
		return nil
	default:
		flag.Usage()
		return fmt.Errorf("unknown action %q", f.action)
	}
}

func (a *app) runTrack(ctx context.Context, f flags) error {
	if f.url == "" {
		return fmt.Errorf("track requires -url")
	}
	a.activity.RecordAsync(activity.Event{
		Kind:     activity.KindFetch,
		EntityID: f.entityID,
		Subject:  f.url,
	})
	err := a.tracker.Track(ctx, f.url, f.entityID, tracker.Options{
		ForceSource:   tracker.Source(strings.ToUpper(f.source)),
		StoredPageKey: f.pageKey,
	})
	if err != nil {
		return err
	}
	g, ok := a.tracker.Get(f.url)
	if !ok {
		return fmt.Errorf("no tracked state for %s", f.url)
	}
	if g.Status == tracker.StatusError {
		return fmt.Errorf("fetch failed: %s", g.Error)
	}
	a.log.WithFields(logrus.Fields{
		"url":       f.url,
		"status":    g.Status,
		"fromCache": g.FromCache,
		"profit":    humanize.CommafWithDigits(g.Derived.ProfitLoss, 2),
	}).Info("tracked")

	if f.save {
		a.activity.RecordAsync(activity.Event{Kind: activity.KindSave, Subject: f.url})
		return a.tracker.Save(ctx, f.url, f.venueID, f.entityID)
	}
	return nil
}

func (a *app) runBulk(ctx context.Context, f flags) error {
	if f.urlTemplate == "" || f.startID <= 0 || f.endID < f.startID {
		return fmt.Errorf("bulk requires -url-template, -start, and -end")
	}
	a.activity.RecordAsync(activity.Event{
		Kind:     activity.KindBulkRefetch,
		EntityID: f.entityID,
		Detail:   map[string]interface{}{"start": f.startID, "end": f.endID},
	})
	results := a.tracker.BulkFetch(ctx, f.entityID, f.urlTemplate, f.startID, f.endID)
	var failed int
	for _, r := range results {
		if r.Err != "" {
			failed++
			a.log.WithField("url", r.URL).Warn(r.Err)
		}
	}
	a.log.WithFields(logrus.Fields{
		"total":  len(results),
		"failed": failed,
	}).Info("bulk fetch finished")
	return nil
}

func (a *app) runJobStart(ctx context.Context, f flags) error {
	if f.startID <= 0 || f.endID < f.startID {
		return fmt.Errorf("job-start requires -start and -end")
	}
	jobID, err := a.api.StartScraperJob(ctx, f.startID, f.endID, f.entityID)
	if err != nil {
		return err
	}
	a.log.WithField("job", jobID).Info("scraper job started")
	a.activity.RecordAsync(activity.Event{Kind: activity.KindJobStart, Subject: jobID})
	return a.runJobMonitor(ctx, jobID)
}

func (a *app) runJobMonitor(ctx context.Context, jobID string) error {
	if jobID == "" {
		return fmt.Errorf("job-monitor requires -job")
	}
	a.monitor.SetJob(ctx, jobID)
	defer a.monitor.Stop()

	tick := time.NewTicker(5 * time.Second)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			st := a.monitor.State()
			if !st.HasJob {
				return nil
			}
			entry := a.log.WithFields(logrus.Fields{
				"job":       jobID,
				"status":    st.Snapshot.Status,
				"processed": st.Snapshot.Stats.TotalURLsProcessed,
				"duration":  st.DurationSeconds,
				"stale":     st.IsStale,
			})
			if st.IsComplete {
				entry.Info("job finished")
				return nil
			}
			entry.Info("job progress")
		}
	}
}

func (a *app) runIngest(ctx context.Context, f flags, cfg config.Config) error {
	if f.dir == "" || f.accountID == "" {
		return fmt.Errorf("ingest requires -dir and -account")
	}
	items, errs := ingest.LoadDir(f.dir, postparse.Options{})
	for _, err := range errs {
		a.log.WithError(err).Warn("skipping unreadable manifest")
	}
	if len(items) == 0 {
		return fmt.Errorf("no ingestable posts under %s", f.dir)
	}

	account := ingest.Account{
		ID:       f.accountID,
		Platform: f.platform,
		EntityID: f.entityID,
		VenueID:  f.venueID,
	}
	res := a.uploader.UploadBatch(ctx, items, account, ingest.BatchOptions{
		AllowedTypes:  []postparse.PostType{postparse.TypeResult, postparse.TypePromotional, postparse.TypeGeneral},
		MinConfidence: f.minConf,
		SelectedOnly:  f.selectedOnly,
		DryRun:        f.dryRun || cfg.DryRun,
		Cancel:        func() bool { return ctx.Err() != nil },
		Progress: func(p ingest.Progress) {
			a.log.WithFields(logrus.Fields{
				"current": p.Current,
				"total":   p.Total,
			}).Info(p.Stage)
		},
	})

	a.activity.RecordAsync(activity.Event{
		Kind:     activity.KindPostUpload,
		EntityID: f.entityID,
		Detail: map[string]interface{}{
			"processed": res.TotalProcessed,
			"created":   res.SuccessCount,
			"skipped":   res.SkippedCount,
			"failed":    res.ErrorCount,
		},
	})
	a.log.WithFields(logrus.Fields{
		"processed": res.TotalProcessed,
		"created":   res.SuccessCount,
		"skipped":   res.SkippedCount,
		"failed":    res.ErrorCount,
		"cancelled": res.Cancelled,
	}).Info("ingest finished")
	if res.ErrorCount > 0 {
		return fmt.Errorf("%d of %d posts failed", res.ErrorCount, res.TotalProcessed)
	}
	return nil
}

func (a *app) serveAdmin(addr string) {
	h := web.New(web.Deps{Games: a.tracker, Job: a.monitor, Logger: a.log})
	a.log.WithField("addr", addr).Info("admin status server listening")
	if err := http.ListenAndServe(addr, h); err != nil {
		a.log.WithError(err).Error("admin server stopped")
	}
}

// wsEndpoint converts the https GraphQL endpoint into its realtime wss
// counterpart.
func wsEndpoint(endpoint string) string {
	ws := strings.Replace(endpoint, "https://", "wss://", 1)
	ws = strings.Replace(ws, "http://", "ws://", 1)
	return strings.Replace(ws, "appsync-api", "appsync-realtime-api", 1)
}
