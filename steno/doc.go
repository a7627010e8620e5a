// Package steno turns terse steno commands like `dx:@data.csv +normalize
// .ts:edge` into structured intents and routes them. The pipeline runs
// strictly forward: Tokenize splits the raw string with ordered, greedy
// pattern matching; a Parser (built over a vocabulary resolved from
// registered extensions) assembles the tokens into an Intent; a Mapper
// matches the Intent against a registry of primitives and yields one of
// four outcomes: direct execution, delegation to an interpreting agent,
// a clarification request, or an error.
//
// Everything here is synchronous and stateless per call. The only shared
// mutable state is the caller-owned ExtensionRegistry, which is mutex
// guarded; parsers snapshot their vocabulary at construction. Expected
// anomalies (unknown flags, unmappable intents, fuzzy targets) degrade
// into warnings or result variants rather than errors, because the
// consumer is a downstream agent that tolerates imprecision.
package steno
