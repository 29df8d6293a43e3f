/*
Package observability exposes Prometheus metrics for validation, requirements
checks and prop-source resolution.

Metrics are registered on a caller supplied prometheus.Registerer, so tests
and embedded uses can keep them isolated from the global default registry.
*/
package observability
