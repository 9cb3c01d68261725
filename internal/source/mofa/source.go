package mofa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"mofa_notifier/internal/domain"
)

const (
	SourceID   = "mofa"
	SourceName = "MOFA Overseas Safety Open Data"

	// DefaultURL is the lightweight new-arrivals feed.
	DefaultURL = "https://www.ezairyu.mofa.go.jp/opendata/area/newarrivalL.xml"
)

// Config holds MOFA source configuration.
type Config struct {
	URL      string
	Timeout  time.Duration
	Location *time.Location
}

// Source implements service.Source for the MOFA open-data feed.
type Source struct {
	httpClient *http.Client
	url        string
	location   *time.Location
	logger     *slog.Logger
}

// New creates a new MOFA source.
func New(cfg Config, logger *slog.Logger) *Source {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Source{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		url:      cfg.URL,
		location: loc,
		logger:   logger.With("source", SourceID),
	}
}

// ID returns the source identifier.
func (s *Source) ID() string {
	return SourceID
}

// Name returns human-readable name.
func (s *Source) Name() string {
	return SourceName
}

// FetchNotices downloads the feed and extracts one notice per <mail>
// element. Notices whose leaveDate cannot be parsed are returned with a nil
// PublishedAt.
func (s *Source) FetchNotices(ctx context.Context) ([]domain.Notice, error) {
	mails, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("fetched feed", "mails", len(mails))

	return s.transform(mails), nil
}

func (s *Source) fetch(ctx context.Context) ([]Mail, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/xml")
	req.Header.Set("User-Agent", "MofaNotifier/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: execute request: %w", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status: %d", domain.ErrNetwork, resp.StatusCode)
	}

	mails, err := Decode(resp.Body)
	if err != nil {
		// A body cut short by the client timeout is a transport failure, not bad XML.
		if ctx.Err() != nil || isTimeout(err) {
			return nil, fmt.Errorf("%w: read body: %w", domain.ErrNetwork, err)
		}
		return nil, err
	}

	return mails, nil
}

func (s *Source) transform(mails []Mail) []domain.Notice {
	notices := make([]domain.Notice, 0, len(mails))

	for _, m := range mails {
		n, err := m.toNotice(s.location)
		if err != nil {
			s.logger.Debug("failed to parse date",
				"info_type", n.TypeCode,
				"leave_date", n.PublishedAtRaw,
				"error", err,
			)
		}
		notices = append(notices, n)
	}

	return notices
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
