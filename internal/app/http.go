package app

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"timelinedb/pkg/state/logger"
)

func (a *App) routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", a.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/admin/sweep", a.handleSweep).Methods(http.MethodPost)
	r.HandleFunc("/admin/instances", a.handleInstances).Methods(http.MethodGet)
	return r
}

func (a *App) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleSweep triggers an immediate cleanup cycle over every instance,
// bypassing the debounce. Per-instance failures are reported but do not
// mask the instances that succeeded.
func (a *App) handleSweep(w http.ResponseWriter, r *http.Request) {
	if err := a.manager.RunImmediate(r.Context()); err != nil {
		logger.Error("admin_sweep_failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("sweep complete"))
}

func (a *App) handleInstances(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"instances": a.reg.Instances(),
	})
}
