// Package ffprobe wraps the ffprobe binary to inspect media containers for
// duration and stream layout before registration and extraction.
package ffprobe
