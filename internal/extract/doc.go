// Package extract orchestrates the external transcoder: it validates
// inputs, composes per-unit caption documents, enforces per-unit timeouts,
// and aggregates batch results with partial-failure semantics.
package extract
