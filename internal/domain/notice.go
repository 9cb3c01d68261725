package domain

import "time"

// Notice type codes published in the MOFA open-data feed.
const (
	NoticeTypeSpot        = "C30"
	NoticeTypeRisk        = "T40"
	NoticeTypeInfection   = "T41"
	NoticeTypeWideArea    = "C50"
	NoticeTypeMailGeneral = "R10"
	NoticeTypeMailUrgent  = "R20"
)

// MaxTier is the highest severity tier used by risk and infection levels.
const MaxTier = 4

// Notice is one travel-safety advisory or embassy mail entry from the feed.
type Notice struct {
	TypeCode     string
	TypeName     string
	TypeNameLong string

	PublishedAtRaw string
	PublishedAt    *time.Time // nil when PublishedAtRaw could not be parsed

	CountryCode string
	CountryName string
	AreaCode    string
	AreaName    string

	Title     string
	DetailURL string

	OfficeCode string
	OfficeName string

	RiskLevels      SeverityFlags
	InfectionLevels SeverityFlags
}

// SeverityFlags holds the independent flags for tiers 1..MaxTier.
type SeverityFlags [MaxTier]bool

// Set returns a copy of f with tier marked active. Out of range tiers are ignored.
func (f SeverityFlags) Set(tier int) SeverityFlags {
	if tier >= 1 && tier <= MaxTier {
		f[tier-1] = true
	}
	return f
}

// Has reports whether tier is flagged.
func (f SeverityFlags) Has(tier int) bool {
	if tier < 1 || tier > MaxTier {
		return false
	}
	return f[tier-1]
}

// Any reports whether at least one tier is flagged.
func (f SeverityFlags) Any() bool {
	for _, v := range f {
		if v {
			return true
		}
	}
	return false
}

// Descending returns the flagged tiers from highest to lowest.
func (f SeverityFlags) Descending() []int {
	var tiers []int
	for tier := MaxTier; tier >= 1; tier-- {
		if f.Has(tier) {
			tiers = append(tiers, tier)
		}
	}
	return tiers
}
