// Package silence wraps ffmpeg's silencedetect filter to produce ordered
// silence intervals used as candidate structural boundaries.
package silence
