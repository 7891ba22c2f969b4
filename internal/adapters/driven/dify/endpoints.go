package dify

import "time"

// Content API endpoint paths, relative to the instance base URL.
const (
	epDatasets      = "/datasets"
	epDatasetDetail = "/datasets/%s"
	epDocuments     = "/datasets/%s/documents"
	epSegments      = "/datasets/%s/documents/%s/segments"
	epCreateByText  = "/datasets/%s/document/create_by_text"
)

// Console API endpoint paths, relative to the console base URL.
const (
	epConsoleLogin     = "/console/api/login"
	epConsoleApps      = "/console/api/apps"
	epConsoleAppExport = "/console/api/apps/%s/export"
	epConsoleAppImport = "/console/api/apps/imports"
)

// Defaults for pagination, timeouts, retries and pacing.
const (
	// DefaultPageSize is the page size for dataset and document listings.
	DefaultPageSize = 20

	// DefaultAppsPageSize is the page size for console app listings.
	DefaultAppsPageSize = 30

	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// ImportTimeout is the longer timeout for DSL imports.
	ImportTimeout = 60 * time.Second

	// MaxRetries is the number of additional attempts after a 500 response.
	MaxRetries = 3

	// RetryDelay is the initial backoff delay, doubled each attempt.
	RetryDelay = 2 * time.Second

	// RequestDelay is the fixed inter-request delay on the content API,
	// observed outside the retry count to respect server-side rate limits.
	RequestDelay = 500 * time.Millisecond
)
