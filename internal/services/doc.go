// Package services provides shared error classification and context
// plumbing for pipeline components.
//
// Errors are tagged with sentinel markers (validation, provider, timeout,
// transient) via Wrap so the orchestrator can map failures onto job status
// without string matching. Context helpers carry the job identifier and
// stage name so loggers pick them up uniformly.
package services
