// Package activity emits structured audit events. Emission is best effort:
// a failed event is logged and dropped, never surfaced to the caller's flow.
package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hoganho/kingsroom-sub004/internal/gql"
)

// Event kinds recorded by the pipeline.
const (
	KindFetch       = "TOURNAMENT_FETCH"
	KindSave        = "TOURNAMENT_SAVE"
	KindJobStart    = "SCRAPER_JOB_START"
	KindJobCancel   = "SCRAPER_JOB_CANCEL"
	KindPostUpload  = "SOCIAL_POST_UPLOAD"
	KindBulkRefetch = "BULK_REFETCH"
)

// Event is one audit entry.
type Event struct {
	ID        string                 `json:"id"`
	Kind      string                 `json:"kind"`
	Actor     string                 `json:"actor,omitempty"`
	EntityID  string                 `json:"entityId,omitempty"`
	Subject   string                 `json:"subject,omitempty"`
	Detail    map[string]interface{} `json:"detail,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

const createActivityEvent = `mutation CreateActivityEvent($input: CreateActivityEventInput!) {
  createActivityEvent(input: $input) { id }
}`

// Client records events through the GraphQL executor.
type Client struct {
	exec gql.Executor
	log  *logrus.Logger
	now  func() time.Time
}

// New returns an activity Client.
func New(exec gql.Executor, log *logrus.Logger) *Client {
	return &Client{exec: exec, log: log, now: time.Now}
}

// Record writes one event. Missing ID and CreatedAt are filled in.
func (c *Client) Record(ctx context.Context, ev Event) error {
	if ev.Kind == "" {
		return errors.New("activity: event kind is required")
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = c.now().UTC()
	}
	var out struct {
		CreateActivityEvent struct {
			ID string `json:"id"`
		} `json:"createActivityEvent"`
	}
	err := c.exec.Run(ctx, createActivityEvent, map[string]interface{}{"input": ev}, &out)
	return errors.Wrap(err, "record activity event")
}

// RecordAsync fires Record on its own goroutine with a short deadline and
// logs the outcome. Callers on a hot path use this so auditing never blocks
// the operation being audited.
func (c *Client) RecordAsync(ev Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.Record(ctx, ev); err != nil {
			c.log.WithError(err).WithField("kind", ev.Kind).Warn("activity event dropped")
		}
	}()
}
