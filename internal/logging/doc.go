// Package logging builds slog loggers with the castpress house format.
//
// Two handlers are provided: a compact console handler for interactive use
// and a JSON handler for machine consumption. Standardized field keys
// (component, job_id, stage) keep log lines greppable across packages, and
// WithContext derives those fields from the context annotations set by the
// pipeline.
package logging
