// Package language provides ISO 639 code lookup for the caption track
// languages lingclip renders and names files after.
package language
