package gql

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecutor replays canned JSON per query and records the vars it saw.
type fakeExecutor struct {
	responses map[string]string
	err       error
	lastQuery string
	lastVars  map[string]interface{}
}

func (f *fakeExecutor) Run(_ context.Context, query string, vars map[string]interface{}, out interface{}) error {
	f.lastQuery = query
	f.lastVars = vars
	if f.err != nil {
		return f.err
	}
	body, ok := f.responses[query]
	if !ok {
		return nil
	}
	return json.Unmarshal([]byte(body), out)
}

func TestFetchTournamentData(t *testing.T) {
	t.Parallel()

	t.Run("Success", func(t *testing.T) {
		t.Parallel()
		exec := &fakeExecutor{responses: map[string]string{
			queryFetchTournamentData: `{"fetchTournamentData":{"fromCache":true,"s3Key":"pages/abc","source":"CACHE"}}`,
		}}
		a := NewAPI(exec)

		res, err := a.FetchTournamentData(context.Background(), "https://host/t/42", FetchOptions{
			ForceRefresh: true,
			EntityID:     "E1",
		})
		require.NoError(t, err)
		require.NotNil(t, res.FromCache)
		assert.True(t, *res.FromCache)
		require.NotNil(t, res.S3Key)
		assert.Equal(t, "pages/abc", *res.S3Key)
		assert.Equal(t, "https://host/t/42", exec.lastVars["url"])
		assert.Equal(t, true, exec.lastVars["forceRefresh"])
		assert.Equal(t, "E1", exec.lastVars["entityId"])
		_, hasKey := exec.lastVars["scraperApiKey"]
		assert.False(t, hasKey)
	})

	t.Run("EmptyResponse", func(t *testing.T) {
		t.Parallel()
		a := NewAPI(&fakeExecutor{responses: map[string]string{
			queryFetchTournamentData: `{"fetchTournamentData":null}`,
		}})
		_, err := a.FetchTournamentData(context.Background(), "u", FetchOptions{})
		assert.Error(t, err)
	})
}

func TestScrapeURLByURL(t *testing.T) {
	t.Parallel()

	t.Run("MissingIsNilNil", func(t *testing.T) {
		t.Parallel()
		a := NewAPI(&fakeExecutor{responses: map[string]string{
			queryScrapeURLByURL: `{"scrapeURLByURL":null}`,
		}})
		rec, err := a.ScrapeURLByURL(context.Background(), "https://host/t/404")
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("Found", func(t *testing.T) {
		t.Parallel()
		a := NewAPI(&fakeExecutor{responses: map[string]string{
			queryScrapeURLByURL: `{"scrapeURLByURL":{"id":"K1","url":"u","lastStatus":"RUNNING","lastScrapedAt":1748779200,"latestS3Key":"pages/kb"}}`,
		}})
		rec, err := a.ScrapeURLByURL(context.Background(), "u")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, "K1", rec.ID)
		require.NotNil(t, rec.LastScrapedAt)
		assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), rec.LastScrapedAt.Time)
		require.NotNil(t, rec.LatestS3Key)
		assert.Equal(t, "pages/kb", *rec.LatestS3Key)
	})
}

func TestGetScraperJobsReport(t *testing.T) {
	t.Parallel()

	t.Run("FieldErrorDegradesToEmpty", func(t *testing.T) {
		t.Parallel()
		a := NewAPI(&fakeExecutor{err: &FieldError{Message: "report unavailable"}})
		jobs, err := a.GetScraperJobsReport(context.Background(), 10)
		require.NoError(t, err)
		assert.Empty(t, jobs)
	})

	t.Run("TransportErrorSurfaces", func(t *testing.T) {
		t.Parallel()
		a := NewAPI(&fakeExecutor{err: assert.AnError})
		_, err := a.GetScraperJobsReport(context.Background(), 10)
		assert.Error(t, err)
	})
}

func TestStartScraperJob(t *testing.T) {
	t.Parallel()

	exec := &fakeExecutor{responses: map[string]string{
		queryStartScraperJob: `{"startScraperJob":{"id":"J1","status":"RUNNING"}}`,
	}}
	a := NewAPI(exec)

	id, err := a.StartScraperJob(context.Background(), 100, 200, "E1")
	require.NoError(t, err)
	assert.Equal(t, "J1", id)
	assert.Equal(t, 100, exec.lastVars["startId"])
	assert.Equal(t, 200, exec.lastVars["endId"])
	assert.Equal(t, "E1", exec.lastVars["entityId"])
}

func TestBulkModifyScrapeURLs(t *testing.T) {
	t.Parallel()

	a := NewAPI(&fakeExecutor{responses: map[string]string{
		queryBulkModifyScrapeURLs: `{"bulkModifyScrapeURLs":{"modified":3}}`,
	}})
	n, err := a.BulkModifyScrapeURLs(context.Background(), []string{"a", "b", "c"}, true)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestPollReassignment(t *testing.T) {
	t.Parallel()

	t.Run("StopsOnTerminalState", func(t *testing.T) {
		t.Parallel()
		a := NewAPI(&fakeExecutor{responses: map[string]string{
			queryReassignmentStatus: `{"getReassignmentStatus":{"taskId":"T1","status":"COMPLETED"}}`,
		}})
		st, err := a.PollReassignment(context.Background(), "T1", time.Millisecond)
		require.NoError(t, err)
		require.NotNil(t, st)
		assert.Equal(t, "COMPLETED", st.Status)
	})

	t.Run("ContextCancelStopsPolling", func(t *testing.T) {
		t.Parallel()
		a := NewAPI(&fakeExecutor{responses: map[string]string{
			queryReassignmentStatus: `{"getReassignmentStatus":{"taskId":"T1","status":"IN_PROGRESS"}}`,
		}})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := a.PollReassignment(ctx, "T1", time.Minute)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestIsDoNotScrape(t *testing.T) {
	t.Parallel()

	assert.True(t, IsDoNotScrape(&FieldError{Message: "Scraping is disabled for this URL"}))
	assert.False(t, IsDoNotScrape(&FieldError{Message: "not found"}))
	assert.False(t, IsDoNotScrape(nil))
}
