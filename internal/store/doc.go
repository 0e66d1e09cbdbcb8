// Package store persists media records, sentences, and the chapter/scene
// tree in SQLite, and provides the advisory per-media locks that keep
// structure edits and extraction batches from interleaving.
package store
