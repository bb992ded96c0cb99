package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"vehicle-tracking-backend/internal/simdata"
)

func newRouter() chi.Router {
	r := chi.NewRouter()
	NewHandler(simdata.NewMemoryStore(), time.UTC).Register(r)
	return r
}

func TestLatest_NotFound(t *testing.T) {
	r := newRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sim-data", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRecordThenLatest(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodPost, "/sim-data",
		strings.NewReader(`{"balance": "12.50", "data_usage": 350.5}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("record status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sim-data", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("latest status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Balance   string  `json:"balance"`
		DataUsage float64 `json:"data_usage"`
		Timestamp string  `json:"timestamp"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Balance != "12.50" || resp.DataUsage != 350.5 {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Timestamp == "" {
		t.Error("timestamp should be set")
	}
}

func TestConsumption(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodPost, "/sim-data",
		strings.NewReader(`{"balance": "9.99", "data_usage": 42}`))
	r.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sim-data/consumption", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, present := resp["balance"]; present {
		t.Error("consumption view should not include balance")
	}
	if resp["data_usage"] != 42.0 {
		t.Errorf("data_usage = %v, want 42", resp["data_usage"])
	}
}

func TestRecord_MissingBalance(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodPost, "/sim-data",
		strings.NewReader(`{"data_usage": 42}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422: %s", rec.Code, rec.Body.String())
	}
}
