package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoganho/kingsroom-sub004/internal/common/log"
	"github.com/hoganho/kingsroom-sub004/internal/jobmon"
	"github.com/hoganho/kingsroom-sub004/internal/tracker"
)

type fakeGames struct {
	games    []tracker.TrackedGame
	refreshE error
	refreshd []string
}

func (f *fakeGames) Snapshot() []tracker.TrackedGame { return f.games }

func (f *fakeGames) Get(url string) (tracker.TrackedGame, bool) {
	for _, g := range f.games {
		if g.URL == url {
			return g, true
		}
	}
	return tracker.TrackedGame{}, false
}

func (f *fakeGames) Refresh(_ context.Context, url, _ string, _ tracker.Options) error {
	f.refreshd = append(f.refreshd, url)
	return f.refreshE
}

type fakeJob struct {
	state jobmon.State
}

func (f *fakeJob) State() jobmon.State { return f.state }

func newTestServer(t *testing.T, games *fakeGames, job *fakeJob) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(Deps{Games: games, Job: job, Logger: log.NewNop()}))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestAdmin(t *testing.T) {
	t.Parallel()

	t.Run("Healthz", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t, &fakeGames{}, &fakeJob{})
		var body map[string]string
		code := getJSON(t, srv.URL+"/healthz", &body)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ok", body["status"])
	})

	t.Run("ListGames", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t, &fakeGames{games: []tracker.TrackedGame{
			{URL: "https://host/t/1", Status: tracker.StatusReadyToSave},
			{URL: "https://host/t/2", Status: tracker.StatusFetching},
		}}, &fakeJob{})

		var body listGamesResponse
		code := getJSON(t, srv.URL+"/status/games", &body)
		assert.Equal(t, http.StatusOK, code)
		require.Len(t, body.Data, 2)
		assert.Equal(t, "https://host/t/1", body.Data[0].URL)
	})

	t.Run("GetGame", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t, &fakeGames{games: []tracker.TrackedGame{
			{URL: "https://host/t/1", Status: tracker.StatusDone},
		}}, &fakeJob{})

		var g tracker.TrackedGame
		code := getJSON(t, srv.URL+"/status/game?url=https://host/t/1", &g)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, tracker.StatusDone, g.Status)

		assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/status/game?url=https://host/t/9", nil))
		assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/status/game", nil))
	})

	t.Run("JobState", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t, &fakeGames{}, &fakeJob{state: jobmon.State{
			HasJob:   true,
			Snapshot: jobmon.Snapshot{JobID: "J1", Status: "RUNNING"},
		}})
		var st jobmon.State
		code := getJSON(t, srv.URL+"/status/job", &st)
		assert.Equal(t, http.StatusOK, code)
		assert.True(t, st.HasJob)
		assert.Equal(t, "J1", st.Snapshot.JobID)
	})

	t.Run("RefreshGame", func(t *testing.T) {
		t.Parallel()
		games := &fakeGames{}
		srv := newTestServer(t, games, &fakeJob{})

		resp, err := http.Post(srv.URL+"/games/refresh?url=https://host/t/1&entityId=E1", "", nil)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
		assert.Equal(t, []string{"https://host/t/1"}, games.refreshd)

		resp, err = http.Post(srv.URL+"/games/refresh", "", nil)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("RefreshFailure", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t, &fakeGames{refreshE: assert.AnError}, &fakeJob{})
		resp, err := http.Post(srv.URL+"/games/refresh?url=https://host/t/1", "", nil)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})

	t.Run("MethodNotAllowed", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t, &fakeGames{}, &fakeJob{})
		resp, err := http.Post(srv.URL+"/status/games", "", nil)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}
