package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type sampleRequest struct {
	Latitude *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Speed    *float64 `json:"speed" validate:"required,gte=0"`
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestRead_Valid(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"latitude": 12.9, "speed": 40.5}`))

	var body sampleRequest
	if !Read(rec, req, &body) {
		t.Fatalf("Read should succeed, got status %d: %s", rec.Code, rec.Body.String())
	}
	if body.Latitude == nil || *body.Latitude != 12.9 {
		t.Errorf("latitude = %v, want 12.9", body.Latitude)
	}
}

func TestRead_NonNumericField(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"latitude": 12.9, "speed": "fast"}`))

	var body sampleRequest
	if Read(rec, req, &body) {
		t.Fatal("Read should reject non-numeric speed")
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	resp := decodeResponse(t, rec)
	if len(resp.Errors) != 1 {
		t.Fatalf("errors = %d, want 1", len(resp.Errors))
	}
	if resp.Errors[0].Field != "speed" {
		t.Errorf("error field = %q, want %q", resp.Errors[0].Field, "speed")
	}
}

func TestRead_MissingRequiredField(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"latitude": 12.9}`))

	var body sampleRequest
	if Read(rec, req, &body) {
		t.Fatal("Read should reject missing speed")
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	resp := decodeResponse(t, rec)
	if len(resp.Errors) != 1 || resp.Errors[0].Field != "speed" {
		t.Errorf("errors = %+v, want one error on speed", resp.Errors)
	}
}

func TestRead_OutOfRange(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"latitude": 120.0, "speed": -1}`))

	var body sampleRequest
	if Read(rec, req, &body) {
		t.Fatal("Read should reject out-of-range values")
	}
	resp := decodeResponse(t, rec)
	if len(resp.Errors) != 2 {
		t.Fatalf("errors = %d, want 2 (latitude and speed)", len(resp.Errors))
	}
}

func TestRead_MalformedJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`))

	var body sampleRequest
	if Read(rec, req, &body) {
		t.Fatal("Read should reject malformed JSON")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestParsePagination_Defaults(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/detections", nil)

	skip, limit, ok := ParsePagination(rec, req, 0)
	if !ok {
		t.Fatalf("ParsePagination should succeed: %s", rec.Body.String())
	}
	if skip != 0 || limit != DefaultLimit {
		t.Errorf("skip, limit = %d, %d; want 0, %d", skip, limit, DefaultLimit)
	}
}

func TestParsePagination_DefaultSkipOverride(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/past_detections", nil)

	skip, _, ok := ParsePagination(rec, req, 3)
	if !ok {
		t.Fatalf("ParsePagination should succeed: %s", rec.Body.String())
	}
	if skip != 3 {
		t.Errorf("skip = %d, want 3", skip)
	}
}

func TestParsePagination_Explicit(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/detections?skip=20&limit=10", nil)

	skip, limit, ok := ParsePagination(rec, req, 0)
	if !ok {
		t.Fatalf("ParsePagination should succeed: %s", rec.Body.String())
	}
	if skip != 20 || limit != 10 {
		t.Errorf("skip, limit = %d, %d; want 20, 10", skip, limit)
	}
}

func TestParsePagination_Invalid(t *testing.T) {
	testCases := []struct {
		name  string
		query string
		field string
	}{
		{"negative skip", "skip=-1", "skip"},
		{"non-numeric skip", "skip=abc", "skip"},
		{"zero limit", "limit=0", "limit"},
		{"limit too large", "limit=101", "limit"},
		{"non-numeric limit", "limit=ten", "limit"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/detections?"+tc.query, nil)

			_, _, ok := ParsePagination(rec, req, 0)
			if ok {
				t.Fatalf("ParsePagination should fail for %q", tc.query)
			}
			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
			}
			resp := decodeResponse(t, rec)
			if len(resp.Errors) != 1 || resp.Errors[0].Field != tc.field {
				t.Errorf("errors = %+v, want one error on %q", resp.Errors, tc.field)
			}
		})
	}
}

func TestWrite_SetsContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, http.StatusOK, map[string]string{"status": "OK"})

	if got := rec.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
