// Package digest renders filtered notices into the single text message
// delivered for a run.
package digest

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"mofa_notifier/internal/domain"
	"mofa_notifier/internal/lookup"
)

const (
	Title = "*【外務省 海外安全情報オープンデータ 新着】*"

	headerTimeLayout = "2006-01-02 15:04"
	dateLayout       = "2006/01/02 15:04"

	indent        = "　"
	tierSeparator = " / "
)

// Formatter renders digests using the labels of a lookup table.
type Formatter struct {
	labels *lookup.Table
}

func NewFormatter(labels *lookup.Table) *Formatter {
	if labels == nil {
		labels = lookup.New(nil, nil)
	}
	return &Formatter{labels: labels}
}

// Build renders notices sorted by publish time, oldest first. The second
// return value is false when there is nothing to send.
func (f *Formatter) Build(notices []domain.Notice, now time.Time) (string, bool) {
	if len(notices) == 0 {
		return "", false
	}

	sorted := slices.Clone(notices)
	slices.SortStableFunc(sorted, comparePublished)

	lines := []string{
		Title,
		fmt.Sprintf("取得時刻（JST）: %s", now.Format(headerTimeLayout)),
		"",
	}
	for i := range sorted {
		lines = append(lines, f.Block(&sorted[i]))
	}

	return strings.Join(lines, "\n"), true
}

// Block renders the lines describing a single notice, newline terminated.
func (f *Formatter) Block(n *domain.Notice) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "• *%s*（%s）\n", f.labels.CountryLabel(n.CountryCode, n.CountryName), n.AreaName)
	fmt.Fprintf(&sb, "%s種別: %s（%s）\n", indent, f.labels.NoticeTypeLabel(n.TypeCode, n.TypeNameLong, n.TypeName), n.TypeCode)
	fmt.Fprintf(&sb, "%s日時: %s\n", indent, publishedLabel(n))

	if n.OfficeName != "" {
		fmt.Fprintf(&sb, "%s発出公館: %s（%s）\n", indent, n.OfficeName, n.OfficeCode)
	}
	if levels := LevelLine(n); levels != "" {
		fmt.Fprintf(&sb, "%s%s\n", indent, levels)
	}

	fmt.Fprintf(&sb, "%sタイトル: %s\n", indent, n.Title)
	fmt.Fprintf(&sb, "%s詳細: %s\n", indent, n.DetailURL)

	return sb.String()
}

// LevelLine describes the flagged risk and infection tiers, or returns ""
// when no tier is flagged.
func LevelLine(n *domain.Notice) string {
	var parts []string
	if n.RiskLevels.Any() {
		parts = append(parts, "危険情報レベル: "+Tiers(n.RiskLevels))
	}
	if n.InfectionLevels.Any() {
		parts = append(parts, "感染症危険レベル: "+Tiers(n.InfectionLevels))
	}
	return strings.Join(parts, tierSeparator)
}

// Tiers renders flagged tiers highest first, e.g. "L4 / L2".
func Tiers(f domain.SeverityFlags) string {
	tiers := f.Descending()
	labels := make([]string, len(tiers))
	for i, tier := range tiers {
		labels[i] = fmt.Sprintf("L%d", tier)
	}
	return strings.Join(labels, tierSeparator)
}

func publishedLabel(n *domain.Notice) string {
	if n.PublishedAt == nil {
		return n.PublishedAtRaw
	}
	return n.PublishedAt.Format(dateLayout)
}

// comparePublished orders by publish time; notices without one sort last.
func comparePublished(a, b domain.Notice) int {
	switch {
	case a.PublishedAt == nil && b.PublishedAt == nil:
		return 0
	case a.PublishedAt == nil:
		return 1
	case b.PublishedAt == nil:
		return -1
	}
	return a.PublishedAt.Compare(*b.PublishedAt)
}
