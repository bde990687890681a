// Package metrics exposes Prometheus instrumentation for the generate,
// audit and execute loop.
//
// All collectors live on an explicit registry instead of the global default,
// so tests can create as many instances as they need.
package metrics
