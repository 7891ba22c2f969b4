package domain

import "fmt"

// ObjectStatus is the terminal state of one migrated object.
type ObjectStatus string

const (
	// StatusSuccess means the object was fully imported into the target.
	StatusSuccess ObjectStatus = "success"

	// StatusSkipped means the object already existed in the target and the
	// skip-existing policy left it untouched.
	StatusSkipped ObjectStatus = "skipped"

	// StatusFailed means export or import of the object failed.
	StatusFailed ObjectStatus = "failed"
)

// ObjectResult records the outcome for a single dataset or app.
type ObjectResult struct {
	Name   string
	Status ObjectStatus

	// Err carries the cause for failed objects, nil otherwise.
	Err error

	// DocumentsImported and DocumentsSkipped detail dataset imports.
	// DocumentsSkipped counts empty-content documents (skipped content),
	// which are neither successes nor failures.
	DocumentsImported int
	DocumentsSkipped  int
}

// Report aggregates one pipeline's counters. Total always equals
// Succeeded + Skipped + Failed.
type Report struct {
	Total     int
	Succeeded int
	Skipped   int
	Failed    int

	Results []ObjectResult
}

// Record appends a result and bumps the matching counter.
func (r *Report) Record(res ObjectResult) {
	r.Total++
	switch res.Status {
	case StatusSuccess:
		r.Succeeded++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
	}
	r.Results = append(r.Results, res)
}

// Summary renders the one-line counter summary every run ends with.
func (r *Report) Summary() string {
	return fmt.Sprintf("total=%d success=%d skipped=%d failed=%d",
		r.Total, r.Succeeded, r.Skipped, r.Failed)
}

// RunReport is the outcome of one migration run. When only one pipeline was
// requested the other report is empty and its error nil.
type RunReport struct {
	// RunID identifies the run in logs and summaries.
	RunID string

	// Datasets and Apps are the per-pipeline reports.
	Datasets Report
	Apps     Report

	// DatasetErr and AppErr carry pipeline-level fatal errors (for example
	// repeated auth failure). Per-object failures are counted in the reports
	// and never surface here.
	DatasetErr error
	AppErr     error
}

// Failed reports whether any requested pipeline ended with a fatal error.
// Per-object failures do not make the run fatal; partial failure is a
// normal, reportable outcome.
func (r *RunReport) Failed() bool {
	return r.DatasetErr != nil || r.AppErr != nil
}
