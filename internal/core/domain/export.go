package domain

// DatasetExport is a self-contained export unit for one dataset: the dataset
// metadata plus every document with its segments. It is written to durable
// storage before import so a run can be replayed without the source.
type DatasetExport struct {
	Dataset   Dataset
	Documents []DocumentExport
}

// AppExport is a self-contained export unit for one app: the app metadata
// plus its serialized DSL definition.
type AppExport struct {
	App App

	// DSL is the YAML workflow definition, passed through verbatim apart
	// from the optional secret-redaction pass on the exporting side.
	DSL string
}
