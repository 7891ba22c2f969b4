// Package domain contains the core types for Dify instance migration:
// instance configuration, datasets/documents/segments, apps, export units
// and migration run reports.
//
// Domain types carry no behaviour beyond validation and derived values.
// All network and storage concerns live in adapters.
package domain
