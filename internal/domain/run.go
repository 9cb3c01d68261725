package domain

import (
	"fmt"
	"time"
)

// RunStats holds statistics about a single pipeline run.
type RunStats struct {
	RunID       string
	SourceID    string
	Fetched     int
	Unparseable int
	InWindow    int
	Delivered   bool
	Published   bool
	Errors      int
	Duration    time.Duration
}

// Summary returns the human-readable status line printed at the end of a run.
func (s *RunStats) Summary() string {
	if s.InWindow == 0 {
		return "新着情報（海外安全情報・在外公館メール）はありませんでした。"
	}
	return fmt.Sprintf("%d 件の情報を Slack に送信しました。", s.InWindow)
}

// Digest is the rendered message for one run together with the notices it covers.
type Digest struct {
	ID          string
	Text        string
	Notices     []Notice
	GeneratedAt time.Time
}
