// Package pipeline is the job orchestrator: it claims pending jobs,
// drives script parsing, batched synthesis, and audio assembly, and is
// the only component that moves a job between states. Post-success side
// effects (locale linking, personality advancement, notifications) run
// best-effort after the terminal state is durably committed.
package pipeline
