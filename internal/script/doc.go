// Package script parses two-speaker dialogue scripts into typed lines.
//
// The wire grammar is one turn per line, `HOST: [emotion] text` or
// `GUEST: [emotion] text`, with the bracketed emotion tag optional.
// Anything else is ignored, which keeps the parser tolerant of the stray
// commentary LLM script generators tend to emit around the dialogue.
package script
