package main

import (
	"fmt"
	"strconv"
	"strings"
)

func parseMediaID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid media id %q", arg)
	}
	return id, nil
}

func parseIndex(arg, what string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid %s index %q", what, arg)
	}
	return value, nil
}

func formatClock(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%d:%02d:%02d", total/3600, total%3600/60, total%60)
}

func truncateText(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "…"
}
