// Package driven defines the driven ports (secondary adapters): the remote
// instance client, the durable export store and the configuration store.
// Implementations live under internal/adapters/driven.
package driven
