package mofa

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"mofa_notifier/internal/domain"
)

// LeaveDateLayout is the textual format of <leaveDate>.
const LeaveDateLayout = "2006/01/02 15:04:05"

// Decode reads an XML document and returns every <mail> element in document
// order, wherever it is nested. The whole document is consumed, so content
// after the root element is reported as a parse error.
func Decode(r io.Reader) ([]Mail, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var (
		mails   []Mail
		depth   int
		hasRoot bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrParse, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if hasRoot && depth == 0 {
				return nil, fmt.Errorf("%w: element <%s> after root element", domain.ErrParse, t.Name.Local)
			}
			hasRoot = true
			if t.Name.Local != "mail" {
				depth++
				continue
			}

			var m Mail
			if err := dec.DecodeElement(&m, &t); err != nil {
				return nil, fmt.Errorf("%w: decode mail: %w", domain.ErrParse, err)
			}
			mails = append(mails, m)
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				return nil, fmt.Errorf("%w: text outside root element", domain.ErrParse)
			}
		}
	}

	if !hasRoot {
		return nil, fmt.Errorf("%w: no root element", domain.ErrParse)
	}

	return mails, nil
}

// ParseLeaveDate parses a leaveDate value as wall-clock time in loc.
func ParseLeaveDate(raw string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", domain.ErrDateParse)
	}
	t, err := time.ParseInLocation(LeaveDateLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %w", domain.ErrDateParse, raw, err)
	}
	return t, nil
}

func (m Mail) toNotice(loc *time.Location) (domain.Notice, error) {
	n := domain.Notice{
		TypeCode:       clean(m.InfoType),
		TypeName:       clean(m.InfoName),
		TypeNameLong:   clean(m.InfoNameLong),
		PublishedAtRaw: clean(m.LeaveDate),
		CountryCode:    clean(m.Country.Cd),
		CountryName:    clean(m.Country.Name),
		AreaCode:       clean(m.Area.Cd),
		AreaName:       clean(m.Area.Name),
		Title:          clean(m.Title),
		DetailURL:      clean(m.InfoURL),
		OfficeCode:     clean(m.KoukanCd),
		OfficeName:     clean(m.KoukanName),
	}

	for i, v := range m.riskLevels() {
		if clean(v) == "Y" {
			n.RiskLevels = n.RiskLevels.Set(i + 1)
		}
	}
	for i, v := range m.infectionLevels() {
		if clean(v) == "Y" {
			n.InfectionLevels = n.InfectionLevels.Set(i + 1)
		}
	}

	publishedAt, err := ParseLeaveDate(n.PublishedAtRaw, loc)
	if err != nil {
		return n, err
	}
	n.PublishedAt = &publishedAt

	return n, nil
}

func clean(s string) string {
	return strings.TrimSpace(s)
}
