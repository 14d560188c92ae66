package server

import (
	"net/http"

	"github.com/drakos74/fidle/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewDashboard serves the training metrics of a run.
// /metrics exposes the prometheus registry, /data/history the recorded curves
// and /data/history?raw=true the full epoch logs.
func NewDashboard(port int, history *metrics.History, prom *metrics.Prometheus) *Server {
	return NewServer("dashboard", port).
		Add(Live()).
		Add(Json(Data, "history", func(r *http.Request) (interface{}, error) {
			if r.URL.Query().Get("raw") == "true" {
				return history.Entries(), nil
			}
			return history.Series(), nil
		})).
		Add(Json(Data, "run", func(r *http.Request) (interface{}, error) {
			return map[string]string{"run": history.Run()}, nil
		})).
		Mount("/metrics", promhttp.HandlerFor(prom.Registry(), promhttp.HandlerOpts{}))
}
