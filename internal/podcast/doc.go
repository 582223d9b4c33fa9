// Package podcast persists synthesis jobs in SQLite and exposes helpers
// for driving their lifecycle.
//
// The Store manages the database connection, schema initialization, the
// atomic pending→processing claim, per-batch checkpoint writes, terminal
// transitions, and the episode↔locale link table written by the
// post-success step. Jobs capture the raw script, voice selection,
// progress, and the sparse segment URL checkpoint so a crashed invocation
// leaves its uploaded segments addressable.
//
// Terminal statuses are final: completed and failed jobs are never moved
// back into flight except through ForceReset, which clears the checkpoint
// and returns the job to pending. Schema changes bump schemaVersion in
// schema.go; users clear the database to adopt the new schema.
package podcast
