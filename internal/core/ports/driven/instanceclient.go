package driven

import (
	"context"

	"github.com/custodia-labs/dify-migrate/internal/core/domain"
)

// DatasetPage is one page of a dataset listing.
type DatasetPage struct {
	Datasets []domain.Dataset

	// HasMore is the server's continuation flag. Pagination terminates only
	// on this signal, never on count heuristics.
	HasMore bool
}

// DocumentPage is one page of a document listing.
type DocumentPage struct {
	Documents []domain.Document
	HasMore   bool
}

// AppPage is one page of an app listing from the console API.
type AppPage struct {
	Apps    []domain.App
	HasMore bool
}

// InstanceClient executes authenticated calls against one Dify instance.
// Implementations hide retry, backoff, rate limiting and console session
// handling from the orchestrator.
//
// Content API operations authenticate with the dataset API key. Console
// operations (apps, DSL export/import) log in lazily with the configured
// email/password and cache the session token.
type InstanceClient interface {
	// ListDatasets fetches one page of datasets. page >= 1, limit > 0.
	ListDatasets(ctx context.Context, page, limit int) (DatasetPage, error)

	// ListAllDatasets walks every page starting at 1 while HasMore is true.
	ListAllDatasets(ctx context.Context) ([]domain.Dataset, error)

	// CreateDataset creates a knowledge base in this instance.
	CreateDataset(ctx context.Context, name, description string) (domain.Dataset, error)

	// DeleteDataset removes a dataset by id.
	DeleteDataset(ctx context.Context, datasetID string) error

	// ListDocuments fetches one page of a dataset's documents.
	ListDocuments(ctx context.Context, datasetID string, page, limit int) (DocumentPage, error)

	// ListAllDocuments walks every document page of a dataset.
	ListAllDocuments(ctx context.Context, datasetID string) ([]domain.Document, error)

	// ListSegments fetches all segments of a document in server order.
	ListSegments(ctx context.Context, datasetID, documentID string) ([]domain.Segment, error)

	// CreateDocumentByText creates one document from combined text; the
	// server re-chunks it into its own segments.
	CreateDocumentByText(ctx context.Context, datasetID, name, text string) (domain.Document, error)

	// ListApps fetches one page of apps via the console API.
	ListApps(ctx context.Context, page, limit int) (AppPage, error)

	// ListAllApps walks every app page via the console API.
	ListAllApps(ctx context.Context) ([]domain.App, error)

	// ExportAppDSL fetches an app's serialized DSL definition.
	ExportAppDSL(ctx context.Context, appID string, includeSecret bool) (string, error)

	// ImportAppDSL creates an app from DSL text and returns the new app id.
	ImportAppDSL(ctx context.Context, dsl string) (string, error)
}

// ClientFactory builds an InstanceClient for a configuration.
// Parallel pipelines use it so each pipeline owns its own client handles.
type ClientFactory interface {
	New(cfg domain.InstanceConfig) InstanceClient
}
