// Package ingest parses SubRip transcripts from the transcription
// collaborator and turns them into clean, ordered sentence records.
package ingest
