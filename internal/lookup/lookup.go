// Package lookup maps feed codes to display labels.
package lookup

import (
	"fmt"
	"maps"
)

// Table holds country and notice type labels. It is built once at startup
// and never written afterwards, so concurrent reads need no locking.
type Table struct {
	countries   map[string]string
	noticeTypes map[string]string
}

// New builds a Table from the compiled-in notice type labels overlaid with
// the given entries. Country labels have no compiled-in entries: they come
// only from configuration. Empty labels are ignored.
func New(countries, noticeTypes map[string]string) *Table {
	t := &Table{
		countries:   make(map[string]string, len(countries)),
		noticeTypes: maps.Clone(defaultNoticeTypes),
	}
	copyLabels(t.countries, countries)
	copyLabels(t.noticeTypes, noticeTypes)
	return t
}

func copyLabels(dst, src map[string]string) {
	for code, label := range src {
		if label != "" {
			dst[code] = label
		}
	}
}

// Country returns the table label for a country code.
func (t *Table) Country(code string) (string, bool) {
	label, ok := t.countries[code]
	return label, ok
}

// NoticeType returns the table label for a notice type code.
func (t *Table) NoticeType(code string) (string, bool) {
	label, ok := t.noticeTypes[code]
	return label, ok
}

// CountryLabel resolves the display name of a country: table label first,
// then the feed-supplied name, then an unknown marker carrying the raw code.
func (t *Table) CountryLabel(code, feedName string) string {
	if label, ok := t.Country(code); ok {
		return label
	}
	if feedName != "" {
		return feedName
	}
	return fmt.Sprintf("国不明（国コード: %s）", code)
}

// NoticeTypeLabel resolves the display name of a notice type: table label
// first, then the feed long name, then the short name, then the raw code.
func (t *Table) NoticeTypeLabel(code, longName, shortName string) string {
	if label, ok := t.NoticeType(code); ok {
		return label
	}
	if longName != "" {
		return longName
	}
	if shortName != "" {
		return shortName
	}
	return code
}
