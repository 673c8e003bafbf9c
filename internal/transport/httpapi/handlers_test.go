package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crashwatch/crashwatch/internal/admission"
	"github.com/crashwatch/crashwatch/internal/detector"
	"github.com/crashwatch/crashwatch/internal/transport/httpapi"
)

func newTestRouter() http.Handler {
	det := detector.New(detector.DefaultConfig())
	service := httpapi.NewService(det, nil, nil)
	return httpapi.NewRouter(service, httpapi.RouterConfig{})
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("encode request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	router := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
}

func TestPostAccelSample_Accepted(t *testing.T) {
	router := newTestRouter()
	rec := postJSON(t, router, "/v1/samples/accel", map[string]float64{"t": 1.0, "v": 9.8})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["accepted"] != true {
		t.Errorf("accepted = %v, want true", body["accepted"])
	}
}

func TestPostAccelSample_OutOfOrderRejected(t *testing.T) {
	router := newTestRouter()
	postJSON(t, router, "/v1/samples/accel", map[string]float64{"t": 10.0, "v": 9.8})
	rec := postJSON(t, router, "/v1/samples/accel", map[string]float64{"t": 5.0, "v": 9.8})

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["accepted"] != false {
		t.Errorf("accepted = %v, want false for an out-of-order sample", body["accepted"])
	}
}

func TestPostSample_InvalidBodyReturnsProblem(t *testing.T) {
	router := newTestRouter()
	req := httptest.NewRequest(http.MethodPost, "/v1/samples/accel", bytes.NewBufferString("not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q, want application/problem+json", ct)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode problem body: %v", err)
	}
	if body["code"] != "INVALID_BODY" {
		t.Errorf("code = %v, want INVALID_BODY", body["code"])
	}
	if body["request_id"] == "" || body["request_id"] == nil {
		t.Error("expected a non-empty request_id in the problem body")
	}
}

func TestPostMode_ValidAndInvalid(t *testing.T) {
	router := newTestRouter()

	rec := postJSON(t, router, "/v1/mode", map[string]string{"mode": "debug"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["mode"] != "DEBUG" {
		t.Errorf("mode = %v, want DEBUG", body["mode"])
	}

	rec = postJSON(t, router, "/v1/mode", map[string]string{"mode": "sideways"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for an invalid mode", rec.Code)
	}
}

func TestPostProcess_DrainedDetectorReturnsNone(t *testing.T) {
	router := newTestRouter()
	req := httptest.NewRequest(http.MethodPost, "/v1/process", bytes.NewBufferString("{}"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["type"] != "NONE" || body["more_work"] != false {
		t.Errorf("process on an empty detector = %+v, want {type: NONE, more_work: false}", body)
	}
}

func TestGetCrash_InitiallyZero(t *testing.T) {
	router := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/v1/crash", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["t"] != 0.0 || body["v"] != 0.0 {
		t.Errorf("initial crash result = %+v, want {t: 0, v: 0}", body)
	}
}

func TestRequestIDPropagatesFromIncomingHeader(t *testing.T) {
	router := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "fixed-test-id")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "fixed-test-id" {
		t.Errorf("X-Request-Id = %q, want fixed-test-id", got)
	}
}

func TestPostAccelSample_RejectedUnderSustainedCPUPressure(t *testing.T) {
	det := detector.New(detector.DefaultConfig())
	service := httpapi.NewService(det, nil, nil)

	mon := admission.NewMonitor(1.0)
	for i := 0; i < 20; i++ {
		mon.ObserveCPULoad(1e6) // far over any threshold, for every sample in the window
	}
	router := httpapi.NewRouter(service, httpapi.RouterConfig{AdmissionMonitor: mon})

	rec := postJSON(t, router, "/v1/samples/accel", map[string]float64{"t": 1.0, "v": 9.8})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 under sustained CPU pressure, body=%s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode problem body: %v", err)
	}
	if body["code"] != "ADMISSION_REJECTED" {
		t.Errorf("code = %v, want ADMISSION_REJECTED", body["code"])
	}
}

func TestMetrics_ExposesPrometheusFormat(t *testing.T) {
	router := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected non-empty metrics body")
	}
}
