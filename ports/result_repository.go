package ports

import (
	"context"

	"goanova/domain/anova"
	"goanova/domain/core"
)

// ResultRepository persists analysis runs and their result rows.
type ResultRepository interface {
	SaveRun(ctx context.Context, run *anova.Run) error
	GetRun(ctx context.Context, id core.RunID) (*anova.Run, error)
}
