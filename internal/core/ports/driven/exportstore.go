package driven

import (
	"context"

	"github.com/custodia-labs/dify-migrate/internal/core/domain"
)

// ExportStore persists export units so a run can be re-imported later
// without contacting the source again.
type ExportStore interface {
	// SaveDataset writes one dataset export unit and returns its path.
	SaveDataset(ctx context.Context, export domain.DatasetExport) (string, error)

	// SaveApp writes one app export unit (DSL text) and returns its path.
	SaveApp(ctx context.Context, export domain.AppExport) (string, error)

	// LoadDatasets reads every stored dataset export unit.
	LoadDatasets(ctx context.Context) ([]domain.DatasetExport, error)

	// LoadApps reads every stored app export unit.
	LoadApps(ctx context.Context) ([]domain.AppExport, error)
}
