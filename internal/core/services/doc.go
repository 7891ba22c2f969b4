// Package services contains the migration engine: the orchestrator driving
// export and import runs and the pure codec converting between wire shapes
// and export units.
package services
