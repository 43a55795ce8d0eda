// Package knowledge reads and maintains the scrape-URL knowledge base: the
// backend's index of known source URLs, their last observed scrape state,
// and their latest stored-page key.
package knowledge

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hoganho/kingsroom-sub004/internal/gql"
)

// Snapshot is what the knowledge base knows about one URL.
type Snapshot struct {
	ID            string
	URL           string
	LastStatus    string
	LastScrapedAt time.Time
	LatestS3Key   string
	DoNotScrape   bool
}

// Backend is the slice of the GraphQL surface the client needs.
type Backend interface {
	ScrapeURLByURL(ctx context.Context, url string) (*gql.ScrapeURLRecord, error)
	SearchScrapeURLs(ctx context.Context, term string, limit int) ([]gql.ScrapeURLRecord, error)
	ModifyScrapeURLStatus(ctx context.Context, url string, doNotScrape bool) error
	BulkModifyScrapeURLs(ctx context.Context, urls []string, doNotScrape bool) (int, error)
}

// Client looks up URLs against the knowledge base.
type Client struct {
	backend Backend
	log     *logrus.Logger
}

// New returns a knowledge-base client.
func New(backend Backend, log *logrus.Logger) *Client {
	return &Client{backend: backend, log: log}
}

// Lookup fetches the snapshot for a URL. An unknown URL returns (nil, nil).
// Callers treat this as best effort: a lookup failure must never abort the
// fetch it precedes.
func (c *Client) Lookup(ctx context.Context, url string) (*Snapshot, error) {
	rec, err := c.backend.ScrapeURLByURL(ctx, url)
	if err != nil {
		return nil, errors.Wrap(err, "lookup scrape url")
	}
	if rec == nil {
		return nil, nil
	}
	return snapshotOf(rec), nil
}

// Search finds knowledge-base entries matching a term.
func (c *Client) Search(ctx context.Context, term string, limit int) ([]Snapshot, error) {
	recs, err := c.backend.SearchScrapeURLs(ctx, term, limit)
	if err != nil {
		return nil, errors.Wrap(err, "search scrape urls")
	}
	out := make([]Snapshot, 0, len(recs))
	for i := range recs {
		out = append(out, *snapshotOf(&recs[i]))
	}
	return out, nil
}

// MarkDoNotScrape forbids further live fetching of a URL. Cache replay stays
// allowed.
func (c *Client) MarkDoNotScrape(ctx context.Context, url string, doNotScrape bool) error {
	if err := c.backend.ModifyScrapeURLStatus(ctx, url, doNotScrape); err != nil {
		return errors.Wrap(err, "modify scrape url status")
	}
	c.log.WithFields(logrus.Fields{"url": url, "doNotScrape": doNotScrape}).Info("updated scrape url status")
	return nil
}

// BulkMarkDoNotScrape flips the flag for many URLs and returns the number
// modified.
func (c *Client) BulkMarkDoNotScrape(ctx context.Context, urls []string, doNotScrape bool) (int, error) {
	n, err := c.backend.BulkModifyScrapeURLs(ctx, urls, doNotScrape)
	if err != nil {
		return 0, errors.Wrap(err, "bulk modify scrape urls")
	}
	return n, nil
}

func snapshotOf(rec *gql.ScrapeURLRecord) *Snapshot {
	s := &Snapshot{
		ID:          rec.ID,
		URL:         rec.URL,
		LastStatus:  rec.LastStatus,
		DoNotScrape: rec.DoNotScrape,
	}
	if rec.LastScrapedAt != nil {
		s.LastScrapedAt = rec.LastScrapedAt.Time
	}
	if rec.LatestS3Key != nil {
		s.LatestS3Key = *rec.LatestS3Key
	}
	return s
}
