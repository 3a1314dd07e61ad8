// Package postgres persists analysis runs through sqlx.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"goanova/domain/anova"
	"goanova/domain/core"
)

// ResultRepository stores analysis runs and their result rows. Implements
// ports.ResultRepository.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a repository over an open database handle.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Connect opens and pings a PostgreSQL database.
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the run tables when they do not exist yet.
func (r *ResultRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id TEXT PRIMARY KEY,
			dataset TEXT NOT NULL,
			group_column TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS analysis_results (
			id BIGSERIAL PRIMARY KEY,
			run_id TEXT NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			variable TEXT NOT NULL,
			p_value DOUBLE PRECISION,
			f_statistic DOUBLE PRECISION,
			mean_variance_between DOUBLE PRECISION,
			mean_variance_within DOUBLE PRECISION,
			n_groups INTEGER NOT NULL,
			total_n INTEGER NOT NULL,
			df_between INTEGER NOT NULL,
			df_within INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS manova_statistics (
			id BIGSERIAL PRIMARY KEY,
			run_id TEXT NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
			statistic TEXT NOT NULL,
			value DOUBLE PRECISION,
			n_groups INTEGER NOT NULL,
			total_n INTEGER NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// SaveRun persists a run and all of its result rows in one transaction.
func (r *ResultRepository) SaveRun(ctx context.Context, run *anova.Run) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO analysis_runs (id, dataset, group_column, created_at) VALUES ($1, $2, $3, $4)`,
		run.ID.String(), run.Dataset, run.GroupColumn, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if err := insertResults(ctx, tx, run.ID, "anova", run.Univariate); err != nil {
		return err
	}
	if err := insertResults(ctx, tx, run.ID, "factorial", run.Factorial); err != nil {
		return err
	}

	if m := run.Multivariate; m != nil {
		rows := []struct {
			statistic string
			value     float64
		}{
			{"wilks_lambda", m.WilksLambda},
			{"hotelling_lawley_trace", m.HotellingLawleyTrace},
			{"pillai_bartlett_trace", m.PillaiBartlettTrace},
		}
		for _, row := range rows {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO manova_statistics (run_id, statistic, value, n_groups, total_n)
				 VALUES ($1, $2, $3, $4, $5)`,
				run.ID.String(), row.statistic, row.value, m.NGroups, m.TotalN)
			if err != nil {
				return fmt.Errorf("failed to insert manova statistic: %w", err)
			}
		}
	}

	return tx.Commit()
}

func insertResults(ctx context.Context, tx *sqlx.Tx, runID core.RunID, kind string, results []anova.TestResult) error {
	for _, row := range results {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO analysis_results (
				run_id, kind, variable, p_value, f_statistic,
				mean_variance_between, mean_variance_within,
				n_groups, total_n, df_between, df_within
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			runID.String(), kind, row.Variable, row.PValue, row.FStatistic,
			row.MeanVarianceBetween, row.MeanVarianceWithin,
			row.NGroups, row.TotalN, row.DFBetween, row.DFWithin)
		if err != nil {
			return fmt.Errorf("failed to insert %s result for %s: %w", kind, row.Variable, err)
		}
	}
	return nil
}

// GetRun loads a run with its result rows.
func (r *ResultRepository) GetRun(ctx context.Context, id core.RunID) (*anova.Run, error) {
	run := &anova.Run{ID: id}
	err := r.db.QueryRowContext(ctx,
		`SELECT dataset, group_column, created_at FROM analysis_runs WHERE id = $1`,
		id.String()).Scan(&run.Dataset, &run.GroupColumn, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT kind, variable, p_value, f_statistic, mean_variance_between,
		        mean_variance_within, n_groups, total_n, df_between, df_within
		 FROM analysis_results WHERE run_id = $1 ORDER BY id`,
		id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var row anova.TestResult
		if err := rows.Scan(&kind, &row.Variable, &row.PValue, &row.FStatistic,
			&row.MeanVarianceBetween, &row.MeanVarianceWithin,
			&row.NGroups, &row.TotalN, &row.DFBetween, &row.DFWithin); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		switch kind {
		case "factorial":
			run.Factorial = append(run.Factorial, row)
		default:
			run.Univariate = append(run.Univariate, row)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading result rows: %w", err)
	}

	statRows, err := r.db.QueryContext(ctx,
		`SELECT statistic, value, n_groups, total_n FROM manova_statistics WHERE run_id = $1 ORDER BY id`,
		id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load manova statistics: %w", err)
	}
	defer statRows.Close()

	for statRows.Next() {
		var statistic string
		var value float64
		var nGroups, totalN int
		if err := statRows.Scan(&statistic, &value, &nGroups, &totalN); err != nil {
			return nil, fmt.Errorf("failed to scan manova statistic: %w", err)
		}
		if run.Multivariate == nil {
			run.Multivariate = &anova.ManovaResult{NGroups: nGroups, TotalN: totalN}
		}
		switch statistic {
		case "wilks_lambda":
			run.Multivariate.WilksLambda = value
		case "hotelling_lawley_trace":
			run.Multivariate.HotellingLawleyTrace = value
		case "pillai_bartlett_trace":
			run.Multivariate.PillaiBartlettTrace = value
		}
	}
	if err := statRows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading manova statistics: %w", err)
	}

	return run, nil
}
