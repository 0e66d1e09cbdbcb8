// Package logging centralizes slog construction and the structured field
// conventions used across lingclip. Components obtain loggers through
// NewComponentLogger and derive per-call fields from context via WithContext
// so media IDs and correlation IDs appear consistently in every record.
package logging
