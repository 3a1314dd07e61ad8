// Package app orchestrates the analysis engines into runs: it fans the
// univariate work out across dependent variables, invokes the factorial and
// multivariate engines when requested, and persists the resulting artifact.
package app

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"goanova/adapters/stats/engine"
	"goanova/domain/anova"
	"goanova/domain/core"
	"goanova/domain/table"
	"goanova/ports"
)

// DefaultConcurrency bounds how many dependent variables are tested at
// once during a univariate sweep.
const DefaultConcurrency = 8

// AnalysisService runs the requested analyses over one table and assembles
// the run artifact.
type AnalysisService struct {
	univariate *engine.UnivariateEngine
	factorial  *engine.FactorialEngine
	manova     *engine.ManovaEngine
	repo       ports.ResultRepository // nil disables persistence
	sem        *semaphore.Weighted
}

// NewAnalysisService wires the engines from their collaborator ports. repo
// may be nil when persistence is not wanted.
func NewAnalysisService(fdist ports.FDist, projector ports.Projector, repo ports.ResultRepository) *AnalysisService {
	univariate := engine.NewUnivariateEngine(fdist)
	return &AnalysisService{
		univariate: univariate,
		factorial:  engine.NewFactorialEngine(univariate, projector),
		manova:     engine.NewManovaEngine(),
		repo:       repo,
		sem:        semaphore.NewWeighted(DefaultConcurrency),
	}
}

// RunRequest describes one analysis invocation.
type RunRequest struct {
	Dataset     string
	Table       *table.Table
	GroupColumn string
	// Dependent lists the dependent variables; empty selects every column
	// except GroupColumn.
	Dependent []string
	// NFactors is the factorial projection width; <= 0 selects the engine
	// default.
	NFactors      int
	WithFactorial bool
	WithManova    bool
}

// Run executes the requested analyses. Univariate tests are independent
// per variable, so they run concurrently under the service's semaphore;
// results keep the caller's variable order. Structural errors on any
// variable abort the whole run - skipping bad variables is a caller
// decision, not something the service does silently.
func (s *AnalysisService) Run(ctx context.Context, req RunRequest) (*anova.Run, error) {
	if req.Table == nil {
		return nil, core.NewInvalidInputError("table is required")
	}

	univariate, err := s.sweep(ctx, req)
	if err != nil {
		return nil, err
	}

	run := &anova.Run{
		ID:          core.NewRunID(),
		Dataset:     req.Dataset,
		GroupColumn: req.GroupColumn,
		Univariate:  univariate,
		CreatedAt:   time.Now().UTC(),
	}

	if req.WithFactorial {
		factorial, err := s.factorial.FactorialAnova(req.Table, req.GroupColumn, req.Dependent, req.NFactors)
		if err != nil {
			return nil, err
		}
		run.Factorial = factorial
	}

	if req.WithManova {
		multivariate, err := s.manova.Manova(req.Table, req.GroupColumn, req.Dependent)
		if err != nil {
			return nil, err
		}
		run.Multivariate = multivariate
	}

	if s.repo != nil {
		if err := s.repo.SaveRun(ctx, run); err != nil {
			return nil, err
		}
	}
	return run, nil
}

// GetRun loads a stored run through the repository port.
func (s *AnalysisService) GetRun(ctx context.Context, id core.RunID) (*anova.Run, error) {
	if s.repo == nil {
		return nil, core.NewInvalidInputError("no result repository configured")
	}
	return s.repo.GetRun(ctx, id)
}

func (s *AnalysisService) sweep(ctx context.Context, req RunRequest) ([]anova.TestResult, error) {
	columns := req.Dependent
	if len(columns) == 0 {
		// Resolve once up front so the fan-out has a stable column list;
		// the engine re-validates per call.
		if !req.Table.HasColumn(req.GroupColumn) {
			return nil, core.NewColumnNotFoundError(req.GroupColumn)
		}
		for _, label := range req.Table.Columns() {
			if label != req.GroupColumn {
				columns = append(columns, label)
			}
		}
	}
	if len(columns) == 0 {
		return nil, core.NewInvalidInputError("no dependent variables to analyze")
	}

	results := make([]anova.TestResult, len(columns))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i, column := range columns {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		wg.Add(1)
		go func(i int, column string) {
			defer wg.Done()
			defer s.sem.Release(1)

			rows, err := s.univariate.Anova(req.Table, req.GroupColumn, []string{column})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			results[i] = rows[0]
		}(i, column)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
