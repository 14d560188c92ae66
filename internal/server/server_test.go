package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/drakos74/fidle/internal/metrics"
	"github.com/drakos74/fidle/internal/storage"
	"github.com/stretchr/testify/assert"
)

func get(t *testing.T, h http.Handler, method, url string) (int, string) {
	req := httptest.NewRequest(method, url, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	b, err := io.ReadAll(rec.Result().Body)
	assert.NoError(t, err)
	return rec.Code, string(b)
}

func TestServer_Routes(t *testing.T) {
	h := NewServer("test", 0).
		Add(Live()).
		AddRoute(GET, Api, "echo", func(r *http.Request) ([]byte, int, error) {
			return []byte(r.URL.Query().Get("v")), http.StatusOK, nil
		}).
		AddRoute(GET, Api, "missing", func(r *http.Request) ([]byte, int, error) {
			return []byte("nope"), http.StatusNotFound, nil
		}).
		AddRoute(GET, Api, "fail", func(r *http.Request) ([]byte, int, error) {
			return nil, 0, errors.New("boom")
		}).
		Handler()

	type test struct {
		method string
		url    string
		code   int
		body   string
	}

	tests := map[string]test{
		"live": {
			method: "GET",
			url:    "/data",
			code:   http.StatusOK,
		},
		"echo": {
			method: "GET",
			url:    "/api/echo?v=hello",
			code:   http.StatusOK,
			body:   "hello",
		},
		"wrong-method": {
			method: "POST",
			url:    "/api/echo",
			code:   http.StatusNotImplemented,
		},
		"custom-code": {
			method: "GET",
			url:    "/api/missing",
			code:   http.StatusNotFound,
			body:   "nope",
		},
		"error": {
			method: "GET",
			url:    "/api/fail",
			code:   http.StatusInternalServerError,
			body:   "boom",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			code, body := get(t, h, tt.method, tt.url)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.body, body)
		})
	}
}

func TestDashboard(t *testing.T) {
	history := metrics.NewHistory(storage.NewVoidStorage())
	prom := metrics.NewPrometheus()
	for epoch := 1; epoch <= 3; epoch++ {
		logs := metrics.Logs{"loss": 1 / float64(epoch), "val_loss": 2 / float64(epoch)}
		history.OnEpochEnd(epoch, logs)
		prom.OnEpochEnd(epoch, logs)
	}
	h := NewDashboard(0, history, prom).Debug().Handler()

	code, body := get(t, h, "GET", "/data/history")
	assert.Equal(t, http.StatusOK, code)
	var series []metrics.Series
	assert.NoError(t, json.Unmarshal([]byte(body), &series))
	assert.Len(t, series, 2)
	assert.Equal(t, "Loss/Train", series[0].Target)
	assert.Len(t, series[0].DataPoints, 3)

	code, body = get(t, h, "GET", "/data/history?raw=true")
	assert.Equal(t, http.StatusOK, code)
	var entries []metrics.Entry
	assert.NoError(t, json.Unmarshal([]byte(body), &entries))
	assert.Len(t, entries, 3)
	assert.Equal(t, 0.5, entries[1].Logs["loss"])

	code, body = get(t, h, "GET", "/data/run")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, history.Run())

	code, body = get(t, h, "GET", "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, strings.Contains(body, `fidle_epoch_metric{group="Loss",split="Validation"}`))
	assert.True(t, strings.Contains(body, "fidle_epochs_total 3"))
}
