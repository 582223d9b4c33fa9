// Package synthesis turns dialogue lines into audio via a TTS
// provider's HTTP API. It knows the built-in providers, applies
// per-provider text cleanup (pronunciation fixes, emotion-tag
// stripping), and retries transient provider failures with
// exponential backoff.
package synthesis
