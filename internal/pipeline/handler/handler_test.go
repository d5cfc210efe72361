package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rivo_backend/internal/pipeline/domain"
	"rivo_backend/internal/pipeline/ports"
	"rivo_backend/internal/pipeline/service"
	"rivo_backend/internal/pipeline/transport"
	"rivo_backend/platform/apperr"
	"rivo_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// stubStore serves a single lead. Everything else panics through the nil
// embedded interfaces, so tests only reach what they mean to.
type stubStore struct {
	ports.Store
	lead domain.Lead
}

func (s *stubStore) WithinTx(_ context.Context, fn func(ports.Tx) error) error {
	return fn(&stubTx{lead: s.lead})
}

type stubTx struct {
	ports.Tx
	lead domain.Lead
}

func (t *stubTx) LockLead(_ context.Context, id int64) (domain.Lead, error) {
	switch id {
	case t.lead.ID:
		return t.lead, nil
	case 503:
		return domain.Lead{}, apperr.Unavailable("resource is busy, retry", nil)
	}
	return domain.Lead{}, apperr.NotFound("lead not found")
}

func newRouter(t *testing.T, lead domain.Lead) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	val := validator.New()
	if err := transport.RegisterValidations(val); err != nil {
		t.Fatalf("RegisterValidations: %v", err)
	}
	svc := service.New(service.Deps{Store: &stubStore{lead: lead}})

	r := gin.New()
	New(svc, val).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestTransitionErrorsMapToStatus(t *testing.T) {
	r := newRouter(t, domain.Lead{ID: 7, Status: domain.LeadDropped})

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"rule violation", "/api/v1/leads/7/convert", "", http.StatusConflict},
		{"rule violation with notes", "/api/v1/leads/7/drop", `{"notes":"again"}`, http.StatusConflict},
		{"missing lead", "/api/v1/leads/8/drop", "", http.StatusNotFound},
		{"lock timeout", "/api/v1/leads/503/drop", "", http.StatusServiceUnavailable},
		{"bad id", "/api/v1/leads/abc/drop", "", http.StatusBadRequest},
		{"malformed body", "/api/v1/leads/7/drop", `{"notes":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(r, http.MethodPost, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestConflictBodyCarriesDetails(t *testing.T) {
	r := newRouter(t, domain.Lead{ID: 7, Status: domain.LeadConverted})

	rec := do(r, http.MethodPost, "/api/v1/leads/7/drop", "")
	var body struct {
		Error   string         `json:"error"`
		Details map[string]any `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != `Lead is in "converted" state. Required: new.` {
		t.Fatalf("unexpected error %q", body.Error)
	}
	if body.Details["entity"] != "lead" || body.Details["current"] != "converted" {
		t.Fatalf("unexpected details %v", body.Details)
	}
}

func TestRetryAfterOnUnavailable(t *testing.T) {
	r := newRouter(t, domain.Lead{ID: 7, Status: domain.LeadNew})

	rec := do(r, http.MethodPost, "/api/v1/leads/503/convert", "")
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestRequestValidation(t *testing.T) {
	r := newRouter(t, domain.Lead{ID: 7, Status: domain.LeadNew})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"unknown stage", http.MethodPut, "/api/v1/cases/1/stage", `{"stage":"approved"}`},
		{"missing stage", http.MethodPut, "/api/v1/cases/1/stage", `{}`},
		{"bad outcome", http.MethodPost, "/api/v1/leads/7/calls", `{"outcome":"voicemail"}`},
		{"missing phone", http.MethodPost, "/api/v1/leads", `{"firstName":"A","lastName":"B"}`},
		{"bad list filter", http.MethodGet, "/api/v1/cases?status=open", ""},
		{"bad attachment status", http.MethodPatch, "/api/v1/clients/1/documents/2/status", `{"status":"approved"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(r, tt.method, tt.path, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}
