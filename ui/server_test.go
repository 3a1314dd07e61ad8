package ui

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"goanova/adapters/gonumdist"
	"goanova/adapters/projection"
	"goanova/app"
)

func newTestServer() *Server {
	service := app.NewAnalysisService(gonumdist.NewF(), projection.NewPCA(), nil)
	return NewServer(service)
}

func fp(v float64) *float64 { return &v }

func goldPayload() analysisRequest {
	return analysisRequest{
		Dataset:     "gold.csv",
		GroupColumn: "group",
		Columns: []columnPayload{
			{Label: "group", Values: []*float64{fp(0), fp(0), fp(0), fp(1), fp(1), fp(1)}},
			{Label: "x", Values: []*float64{fp(2), fp(4), fp(6), fp(8), fp(10), fp(12)}},
			{Label: "y", Values: []*float64{fp(1), fp(2), fp(3), fp(1), fp(2), fp(3)}},
		},
	}
}

func postJSON(t *testing.T, s *Server, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	newTestServer().Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: want 200, got %d", rec.Code)
	}
}

func TestAnovaEndpoint(t *testing.T) {
	rec := postJSON(t, newTestServer(), "/api/anova", goldPayload())
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp runResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID == "" {
		t.Fatal("response has no run id")
	}
	if len(resp.Univariate) != 2 {
		t.Fatalf("expected 2 univariate rows, got %d", len(resp.Univariate))
	}

	x := resp.Univariate[0]
	if x.Variable != "x" {
		t.Fatalf("expected first variable x, got %s", x.Variable)
	}
	if x.FStatistic == nil || math.Abs(*x.FStatistic-6.75) > 1e-9 {
		t.Fatalf("unexpected f statistic: %v", x.FStatistic)
	}
	if x.PValue == nil || *x.PValue > 0.062 || *x.PValue < 0.058 {
		t.Fatalf("unexpected p value: %v", x.PValue)
	}
	if resp.Multivariate != nil || len(resp.Factorial) != 0 {
		t.Fatal("anova endpoint should not run factorial or manova")
	}
}

func TestManovaEndpoint(t *testing.T) {
	rec := postJSON(t, newTestServer(), "/api/manova", goldPayload())
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp runResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	m := resp.Multivariate
	if m == nil {
		t.Fatal("manova endpoint returned no multivariate block")
	}
	if m.NGroups != 2 || m.TotalN != 6 {
		t.Fatalf("unexpected shape: %+v", m)
	}
	if m.WilksLambda == nil || math.Abs(*m.WilksLambda) > 1e-9 {
		t.Fatalf("unexpected wilks lambda: %v", m.WilksLambda)
	}
	if m.HotellingLawleyTrace == nil || math.Abs(*m.HotellingLawleyTrace-2.16) > 1e-9 {
		t.Fatalf("unexpected hotelling-lawley trace: %v", m.HotellingLawleyTrace)
	}
}

func TestFactorialEndpoint(t *testing.T) {
	payload := goldPayload()
	payload.NFactors = 1
	rec := postJSON(t, newTestServer(), "/api/factorial", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp runResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Factorial) != 1 {
		t.Fatalf("expected 1 factorial row, got %d", len(resp.Factorial))
	}
	if resp.Factorial[0].Variable != "factor_1" {
		t.Fatalf("unexpected factor label: %s", resp.Factorial[0].Variable)
	}
}

func TestNullValuesAreMissing(t *testing.T) {
	payload := goldPayload()
	payload.Columns[1].Values[1] = nil

	rec := postJSON(t, newTestServer(), "/api/anova", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp runResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Univariate[0].TotalN != 5 {
		t.Fatalf("null value should drop a row: %+v", resp.Univariate[0])
	}
	if resp.Univariate[1].TotalN != 6 {
		t.Fatalf("complete column should keep all rows: %+v", resp.Univariate[1])
	}
}

func TestErrorStatusMapping(t *testing.T) {
	s := newTestServer()

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/anova", bytes.NewReader([]byte("{")))
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("want 400, got %d", rec.Code)
		}
	})

	t.Run("no columns", func(t *testing.T) {
		rec := postJSON(t, s, "/api/anova", analysisRequest{GroupColumn: "group"})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("want 400, got %d", rec.Code)
		}
	})

	t.Run("unknown group column", func(t *testing.T) {
		payload := goldPayload()
		payload.GroupColumn = "nope"
		rec := postJSON(t, s, "/api/anova", payload)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("want 400, got %d", rec.Code)
		}
	})

	t.Run("single group", func(t *testing.T) {
		payload := analysisRequest{
			GroupColumn: "group",
			Columns: []columnPayload{
				{Label: "group", Values: []*float64{fp(0), fp(0), fp(0)}},
				{Label: "x", Values: []*float64{fp(1), fp(2), fp(3)}},
			},
		}
		rec := postJSON(t, s, "/api/anova", payload)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("want 422, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("report without repository", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/runs/some-id/report", nil)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("want 404, got %d", rec.Code)
		}
	})
}
