package services

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/dify-migrate/internal/core/domain"
)

// SegmentSeparator joins segment contents into the combined import text.
// Import always creates one re-chunked document from the concatenation;
// original segment boundaries are not preserved.
const SegmentSeparator = "\n\n"

// secretValueType marks DSL environment variables whose values must not
// leave the source instance unless explicitly requested.
const secretValueType = "secret"

// BuildDatasetExport assembles an export unit from a dataset and its
// documents with segments. The only requirement is a dataset id; everything
// else passes through as fetched.
func BuildDatasetExport(dataset domain.Dataset, documents []domain.DocumentExport) (domain.DatasetExport, error) {
	if dataset.ID == "" {
		return domain.DatasetExport{}, fmt.Errorf("%w: dataset id is required", domain.ErrInvalidInput)
	}
	return domain.DatasetExport{Dataset: dataset, Documents: documents}, nil
}

// CombineSegments joins a document's segment contents, in their fetched
// order, with a blank-line separator. Returns domain.ErrEmptyContent when no
// segment carries content; callers count that document as skipped content.
func CombineSegments(doc domain.DocumentExport) (string, error) {
	parts := make([]string, 0, len(doc.Segments))
	for _, seg := range doc.Segments {
		if seg.Content != "" {
			parts = append(parts, seg.Content)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("%q: %w", doc.Document.Name, domain.ErrEmptyContent)
	}
	return strings.Join(parts, SegmentSeparator), nil
}

// RedactSecrets blanks the values of secret-typed environment variables in
// serialized DSL text. Redaction happens on the exporting side so target-side
// secrets are never transmitted. Non-secret entries and document structure
// pass through untouched.
func RedactSecrets(dsl string) (string, error) {
	var doc any
	if err := yaml.Unmarshal([]byte(dsl), &doc); err != nil {
		return "", fmt.Errorf("parse DSL: %w", err)
	}

	redactNode(doc)

	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("serialize DSL: %w", err)
	}
	return string(out), nil
}

// redactNode walks the decoded YAML tree and clears the "value" of any
// mapping whose "value_type" is secret.
func redactNode(node any) {
	switch n := node.(type) {
	case map[string]any:
		if vt, ok := n["value_type"].(string); ok && vt == secretValueType {
			if _, ok := n["value"]; ok {
				n["value"] = ""
			}
		}
		for _, v := range n {
			redactNode(v)
		}
	case []any:
		for _, v := range n {
			redactNode(v)
		}
	}
}
