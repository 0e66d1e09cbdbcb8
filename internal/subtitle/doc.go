// Package subtitle builds ASS caption documents, cleans raw transcript text,
// and matches glossary phrases for annotation and fill-in-the-blank display.
package subtitle
