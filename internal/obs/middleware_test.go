package obs_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/common"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/obs"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/tenant"
)

func TestHTTPMetricsLabels(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := obs.NewHTTPMetrics("wholesale", []float64{1, 10}, registry)
	handler := obs.HTTPObs{Metrics: metrics}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/quote", nil)
	req = req.WithContext(obs.WithRoutePattern(req.Context(), "/api/v1/checkout/quote"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodPost, "/api/v1/checkout/quote", "422", "false")))
	require.NotZero(t, testutil.CollectAndCount(metrics.ReqDur))
	require.Equal(t, float64(0), testutil.ToFloat64(metrics.InFlight))
}

func TestRequestLoggerWritesTenant(t *testing.T) {
	var buf bytes.Buffer
	logger := obs.NewLoggerTo(&buf, "json", "info")
	handler := obs.RequestLogger{Logger: logger}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(common.ReplayedHeader, "true")
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/abc/finalize", nil)
	req = req.WithContext(tenant.WithTenant(req.Context(), "acme"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "http_request", line["message"])
	require.Equal(t, "info", line["level"])
	require.Equal(t, "acme", line["tenant_id"])
	require.Equal(t, "wholesale-checkout", line["service"])
	require.Equal(t, true, line["idempotent_replay"])
	require.Equal(t, float64(201), line["status"])
}

func TestRequestLoggerQuietsProbes(t *testing.T) {
	var buf bytes.Buffer
	handler := obs.RequestLogger{Logger: obs.NewLoggerTo(&buf, "json", "info")}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req = req.WithContext(obs.WithRoutePattern(req.Context(), "/health/live"))
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.Zero(t, buf.Len())
}

func TestRequestLoggerWarnsOnClientErrors(t *testing.T) {
	var buf bytes.Buffer
	handler := obs.RequestLogger{Logger: obs.NewLoggerTo(&buf, "json", "info")}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/checkout/quote", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "warn", line["level"])
	require.Equal(t, "unmatched", line["route"])
}

func TestParseBucketsCSVSkipsInvalid(t *testing.T) {
	require.Equal(t, []float64{5, 10.5}, obs.ParseBucketsCSV("5, x, -1, 10.5,"))
	require.Nil(t, obs.ParseBucketsCSV("  "))
}
