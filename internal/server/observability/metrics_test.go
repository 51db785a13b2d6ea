package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// TestMetricsRegistered verifies that all metrics are gathered from the
// default registry.
func TestMetricsRegistered(t *testing.T) {
	LoginsTotal.WithLabelValues(OutcomeSuccess).Add(0)
	RegistrationsTotal.WithLabelValues(OutcomeSuccess).Add(0)
	PrescriptionUploadsTotal.WithLabelValues(OutcomeSuccess, "false").Add(0)
	AuthRejectionsTotal.WithLabelValues("missing").Add(0)

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gathering metrics: %v", err)
	}

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"prontuario_logins_total",
		"prontuario_registrations_total",
		"prontuario_prescription_uploads_total",
		"prontuario_auth_rejections_total",
	} {
		if !names[want] {
			t.Errorf("metric %s not registered", want)
		}
	}
}

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(Middleware())
	r.GET("/receitas", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/login", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	return r
}

func TestMiddlewareRecordsRequestCount(t *testing.T) {
	r := newEngine()
	before := counterValue(t, RequestsTotal, "GET", "/receitas", "2xx")

	req := httptest.NewRequest(http.MethodGet, "/receitas", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	if got := counterValue(t, RequestsTotal, "GET", "/receitas", "2xx"); got != before+1 {
		t.Errorf("expected counter %v, got %v", before+1, got)
	}
}

func TestMiddlewareCapturesStatusClass(t *testing.T) {
	r := newEngine()
	before := counterValue(t, RequestsTotal, "POST", "/login", "4xx")

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	if got := counterValue(t, RequestsTotal, "POST", "/login", "4xx"); got != before+1 {
		t.Errorf("expected counter %v, got %v", before+1, got)
	}
}

func TestMiddlewareRecordsDuration(t *testing.T) {
	r := newEngine()
	before := histogramCount(t, RequestDuration, "GET", "/receitas")

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/receitas", nil))

	if got := histogramCount(t, RequestDuration, "GET", "/receitas"); got != before+1 {
		t.Errorf("expected %d observations, got %d", before+1, got)
	}
}

func TestMiddlewareUnmatchedRoute(t *testing.T) {
	r := newEngine()
	before := counterValue(t, RequestsTotal, "GET", unmatchedRoute, "4xx")

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/does/not/exist/123", nil))

	if got := counterValue(t, RequestsTotal, "GET", unmatchedRoute, "4xx"); got != before+1 {
		t.Errorf("expected counter %v, got %v", before+1, got)
	}
}

// counterValue reads the current value of a CounterVec for the given labels.
func counterValue(t *testing.T, cv *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	m := &dto.Metric{}
	c, err := cv.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("getting counter metric: %v", err)
	}
	if err := c.(prometheus.Metric).Write(m); err != nil {
		t.Fatalf("writing counter metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

// histogramCount reads the observation count from a HistogramVec.
func histogramCount(t *testing.T, hv *prometheus.HistogramVec, labels ...string) uint64 {
	t.Helper()
	m := &dto.Metric{}
	obs, err := hv.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("getting histogram metric: %v", err)
	}
	if err := obs.(prometheus.Metric).Write(m); err != nil {
		t.Fatalf("writing histogram metric: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}
