package domain

// Dataset is a named knowledge-base container on a Dify instance.
// IDs are instance-local; datasets are matched across instances by exact,
// case-sensitive Name.
type Dataset struct {
	// ID is the instance-local identifier.
	ID string

	// Name is the identity key for cross-instance matching.
	Name string

	// Description is optional free text.
	Description string

	// DocumentCount is the server-reported number of documents.
	DocumentCount int

	// WordCount is the server-reported total word count.
	WordCount int
}

// Document is a named content unit inside a dataset.
type Document struct {
	// ID is the instance-local identifier.
	ID string

	// Name is the document title.
	Name string
}

// Segment is an indexed chunk of a document's text.
// Segments are immutable once fetched from the source.
type Segment struct {
	// Content is the chunk text.
	Content string

	// Keywords are optional retrieval keywords attached by the server.
	Keywords []string
}

// DocumentExport pairs a document with its ordered segments as fetched
// from the source instance.
type DocumentExport struct {
	Document Document
	Segments []Segment
}
