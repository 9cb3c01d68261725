package service

import (
	"time"

	"mofa_notifier/internal/domain"
)

// FilterByWindow keeps notices published at or after now-window, preserving
// order. Notices without a parsed publish time are dropped.
func FilterByWindow(notices []domain.Notice, now time.Time, window time.Duration) []domain.Notice {
	threshold := now.Add(-window)

	var filtered []domain.Notice
	for _, n := range notices {
		if n.PublishedAt == nil || n.PublishedAt.Before(threshold) {
			continue
		}
		filtered = append(filtered, n)
	}
	return filtered
}
