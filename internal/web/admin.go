// Package web exposes a small JSON status surface over the running pipeline.
package web

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hoganho/kingsroom-sub004/internal/jobmon"
	"github.com/hoganho/kingsroom-sub004/internal/tracker"
)

// GameSource reports tracked game state.
type GameSource interface {
	Snapshot() []tracker.TrackedGame
	Get(url string) (tracker.TrackedGame, bool)
	Refresh(ctx context.Context, url, entityID string, opts tracker.Options) error
}

// JobSource reports batch job state.
type JobSource interface {
	State() jobmon.State
}

var _ GameSource = (*tracker.Tracker)(nil)
var _ JobSource = (*jobmon.Monitor)(nil)

// Deps wires the admin surface.
type Deps struct {
	Games  GameSource
	Job    JobSource
	Logger *logrus.Logger
}

type admin struct {
	*mux.Router
	games GameSource
	job   JobSource
	log   *logrus.Logger
}

// New returns the admin handler.
func New(deps Deps) http.Handler {
	a := &admin{
		Router: mux.NewRouter(),
		games:  deps.Games,
		job:    deps.Job,
		log:    deps.Logger,
	}

	a.HandleFunc("/healthz", a.healthz).Methods(http.MethodGet)
	a.HandleFunc("/status/games", a.listGames).Methods(http.MethodGet)
	a.HandleFunc("/status/game", a.getGame).Methods(http.MethodGet)
	a.HandleFunc("/status/job", a.jobState).Methods(http.MethodGet)
	a.HandleFunc("/games/refresh", a.refreshGame).Methods(http.MethodPost)

	return a
}

func (a *admin) healthz(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, "healthz")
}

type listGamesResponse struct {
	Data  []tracker.TrackedGame `json:"data"`
	Error string                `json:"error"`
}

func (a *admin) listGames(w http.ResponseWriter, r *http.Request) {
	resp := listGamesResponse{Data: a.games.Snapshot()}
	a.writeJSON(w, http.StatusOK, resp, "listGames")
}

func (a *admin) getGame(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		a.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "url is required"}, "getGame")
		return
	}
	g, ok := a.games.Get(url)
	if !ok {
		a.writeJSON(w, http.StatusNotFound, map[string]string{"error": "not tracked"}, "getGame")
		return
	}
	a.writeJSON(w, http.StatusOK, g, "getGame")
}

func (a *admin) jobState(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.job.State(), "jobState")
}

func (a *admin) refreshGame(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		a.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "url is required"}, "refreshGame")
		return
	}
	entityID := r.URL.Query().Get("entityId")
	if err := a.games.Refresh(r.Context(), url, entityID, tracker.Options{}); err != nil {
		a.log.WithError(err).WithField("url", url).Error("manual refresh failed")
		a.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()}, "refreshGame")
		return
	}
	a.writeJSON(w, http.StatusAccepted, map[string]string{"status": "refreshing", "url": url}, "refreshGame")
}

func (a *admin) writeJSON(w http.ResponseWriter, code int, v interface{}, handler string) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.log.WithError(err).WithField("handler", handler).Error("write response")
	}
}
