// Package ui exposes the analysis service over HTTP: JSON endpoints for
// the three analyses and an HTML report per stored run.
package ui

import (
	"encoding/json"
	"log"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"goanova/app"
	"goanova/domain/anova"
	"goanova/domain/core"
	"goanova/domain/table"
	"goanova/internal/report"
)

// Server is the HTTP surface over the analysis service.
type Server struct {
	router  *chi.Mux
	service *app.AnalysisService
}

// NewServer creates the server and mounts its routes.
func NewServer(service *app.AnalysisService) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/api/anova", s.handleAnalysis(false, false))
	s.router.Post("/api/factorial", s.handleAnalysis(true, false))
	s.router.Post("/api/manova", s.handleAnalysis(false, true))
	s.router.Get("/api/runs/{id}/report", s.handleReport)
	return s
}

// Handler returns the mounted router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	log.Printf("analysis server listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// columnPayload is one table column; null values are missing.
type columnPayload struct {
	Label  string     `json:"label"`
	Values []*float64 `json:"values"`
}

type analysisRequest struct {
	Dataset          string          `json:"dataset,omitempty"`
	GroupColumn      string          `json:"group_column"`
	DependentColumns []string        `json:"dependent_columns,omitempty"`
	NFactors         int             `json:"n_factors,omitempty"`
	Columns          []columnPayload `json:"columns"`
}

// resultRow mirrors anova.TestResult with nullable numerics so NaN and
// infinity survive JSON encoding as null markers plus a text form.
type resultRow struct {
	Variable            string   `json:"variable"`
	PValue              *float64 `json:"p_value"`
	FStatistic          *float64 `json:"f_statistic"`
	FStatisticText      string   `json:"f_statistic_text,omitempty"`
	MeanVarianceBetween *float64 `json:"mean_variance_between"`
	MeanVarianceWithin  *float64 `json:"mean_variance_within"`
	NGroups             int      `json:"n_groups"`
	TotalN              int      `json:"total_n"`
	DFBetween           int      `json:"df_between"`
	DFWithin            int      `json:"df_within"`
}

type manovaResponse struct {
	Variables            []string `json:"variables"`
	WilksLambda          *float64 `json:"wilks_lambda"`
	HotellingLawleyTrace *float64 `json:"hotelling_lawley_trace"`
	PillaiBartlettTrace  *float64 `json:"pillai_bartlett_trace"`
	NGroups              int      `json:"n_groups"`
	TotalN               int      `json:"total_n"`
}

type runResponse struct {
	ID           string          `json:"id"`
	Dataset      string          `json:"dataset,omitempty"`
	GroupColumn  string          `json:"group_column"`
	Univariate   []resultRow     `json:"univariate,omitempty"`
	Factorial    []resultRow     `json:"factorial,omitempty"`
	Multivariate *manovaResponse `json:"multivariate,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalysis(withFactorial, withManova bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload analysisRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
			return
		}

		tbl, err := buildTable(payload.Columns)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		run, err := s.service.Run(r.Context(), app.RunRequest{
			Dataset:       payload.Dataset,
			Table:         tbl,
			GroupColumn:   payload.GroupColumn,
			Dependent:     payload.DependentColumns,
			NFactors:      payload.NFactors,
			WithFactorial: withFactorial,
			WithManova:    withManova,
		})
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, toRunResponse(run))
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	run, err := s.service.GetRun(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(report.HTML(run))
}

func buildTable(columns []columnPayload) (*table.Table, error) {
	if len(columns) == 0 {
		return nil, core.NewInvalidInputError("payload has no columns")
	}
	tbl := table.New()
	for _, col := range columns {
		values := make([]float64, len(col.Values))
		for i, v := range col.Values {
			if v == nil {
				values[i] = math.NaN()
			} else {
				values[i] = *v
			}
		}
		if err := tbl.AddColumn(col.Label, values); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

func statusFor(err error) int {
	switch {
	case core.IsInvalidInput(err):
		return http.StatusBadRequest
	case core.IsInsufficientData(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func toRunResponse(run *anova.Run) runResponse {
	resp := runResponse{
		ID:          run.ID.String(),
		Dataset:     run.Dataset,
		GroupColumn: run.GroupColumn,
		Univariate:  toRows(run.Univariate),
		Factorial:   toRows(run.Factorial),
	}
	if m := run.Multivariate; m != nil {
		resp.Multivariate = &manovaResponse{
			Variables:            m.Variables,
			WilksLambda:          finite(m.WilksLambda),
			HotellingLawleyTrace: finite(m.HotellingLawleyTrace),
			PillaiBartlettTrace:  finite(m.PillaiBartlettTrace),
			NGroups:              m.NGroups,
			TotalN:               m.TotalN,
		}
	}
	return resp
}

func toRows(results []anova.TestResult) []resultRow {
	rows := make([]resultRow, 0, len(results))
	for _, res := range results {
		row := resultRow{
			Variable:            res.Variable,
			PValue:              finite(res.PValue),
			FStatistic:          finite(res.FStatistic),
			MeanVarianceBetween: finite(res.MeanVarianceBetween),
			MeanVarianceWithin:  finite(res.MeanVarianceWithin),
			NGroups:             res.NGroups,
			TotalN:              res.TotalN,
			DFBetween:           res.DFBetween,
			DFWithin:            res.DFWithin,
		}
		if row.FStatistic == nil {
			// Keep degenerate statistics visible even though JSON cannot
			// carry NaN or infinity.
			switch {
			case math.IsInf(res.FStatistic, 1):
				row.FStatisticText = "+Inf"
			case math.IsNaN(res.FStatistic):
				row.FStatisticText = "NaN"
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
