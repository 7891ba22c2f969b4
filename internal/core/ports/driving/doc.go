// Package driving defines the driving ports (primary interfaces) through
// which the CLI layer operates the migration engine.
package driving
