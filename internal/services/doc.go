// Package services defines shared utilities consumed by the segmentation and
// extraction components.
//
// Key responsibilities:
//   - Context helpers that stamp media IDs, component names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent extraction statuses.
//
// Use these helpers when wiring new component logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
