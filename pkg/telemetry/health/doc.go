// Package health provides liveness and readiness probes for the service.
//
// # Overview
//
// The health package exposes Kubernetes-style probe endpoints backed by
// per-component checks:
//
//   - /health: liveness, answers as long as the process runs
//   - /ready: readiness, aggregates all registered component checks
//   - /version: build information
//
// # Usage
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("storage", health.StorageCheck(store))
//	checker.RegisterCheck("scheduler", health.SchedulerCheck(scheduler))
//
//	mux := http.NewServeMux()
//	health.RegisterEndpoints(mux, checker, version, commit, buildTime)
//
// Checks run concurrently with a shared timeout. A single unhealthy
// component degrades readiness (503) without affecting liveness.
package health
