package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"mofa_notifier/internal/config"
	"mofa_notifier/internal/digest"
	"mofa_notifier/internal/domain"
	"mofa_notifier/internal/observability"
)

const (
	outcomeSent  = "sent"
	outcomeEmpty = "empty"
	outcomeError = "error"
)

// RunService executes one fetch, filter, format and deliver pass.
type RunService struct {
	source    Source
	notifier  Notifier
	publisher Publisher
	formatter *digest.Formatter
	metrics   *observability.Metrics
	clock     clockwork.Clock
	location  *time.Location
	logger    *slog.Logger
	config    config.FeedConfig
}

func NewRunService(
	source Source,
	notifier Notifier,
	publisher Publisher,
	formatter *digest.Formatter,
	metrics *observability.Metrics,
	clock clockwork.Clock,
	location *time.Location,
	logger *slog.Logger,
	cfg config.FeedConfig,
) *RunService {
	return &RunService{
		source:    source,
		notifier:  notifier,
		publisher: publisher,
		formatter: formatter,
		metrics:   metrics,
		clock:     clock,
		location:  location,
		logger:    logger.With("source", source.ID()),
		config:    cfg,
	}
}

// Run performs a single pipeline pass. A nil error with stats.InWindow == 0
// means there was nothing new and no delivery was attempted.
func (s *RunService) Run(ctx context.Context) (stats *domain.RunStats, err error) {
	startTime := s.clock.Now()
	now := startTime.In(s.location)

	stats = &domain.RunStats{
		RunID:    uuid.NewString(),
		SourceID: s.source.ID(),
	}
	logger := s.logger.With("run_id", stats.RunID)

	defer func() {
		stats.Duration = s.clock.Since(startTime)
		s.record(ctx, logger, stats, err)
	}()

	logger.Info("starting run",
		"source_name", s.source.Name(),
		"window", s.config.Window(),
	)

	notices, err := s.source.FetchNotices(ctx)
	if err != nil {
		return stats, fmt.Errorf("fetch notices: %w", err)
	}

	stats.Fetched = len(notices)
	for _, n := range notices {
		if n.PublishedAt == nil {
			stats.Unparseable++
		}
	}
	logger.Info("fetched notices from source",
		"count", stats.Fetched,
		"unparseable", stats.Unparseable,
	)

	fresh := FilterByWindow(notices, now, s.config.Window())
	stats.InWindow = len(fresh)
	logger.Debug("filtered by window", "remaining", stats.InWindow)

	text, ok := s.formatter.Build(fresh, now)
	if !ok {
		logger.Info("no new notices")
		return stats, nil
	}

	if err := s.notifier.Notify(ctx, text); err != nil {
		return stats, fmt.Errorf("notify: %w", err)
	}
	stats.Delivered = true

	if s.publisher != nil {
		d := &domain.Digest{
			ID:          stats.RunID,
			Text:        text,
			Notices:     fresh,
			GeneratedAt: now,
		}
		if err := s.publisher.Publish(ctx, d); err != nil {
			stats.Errors++
			s.metrics.PublishErrors.Inc()
			logger.Warn("publish digest failed", "error", err)
		} else {
			stats.Published = true
		}
	}

	return stats, nil
}

func (s *RunService) record(ctx context.Context, logger *slog.Logger, stats *domain.RunStats, err error) {
	s.metrics.NoticesFetched.Add(float64(stats.Fetched))
	s.metrics.NoticesUnparseable.Add(float64(stats.Unparseable))
	s.metrics.RunDuration.Observe(stats.Duration.Seconds())

	switch {
	case err != nil:
		s.metrics.Runs.WithLabelValues(outcomeError).Inc()
		logger.Error("run failed", "error", err, "duration", stats.Duration)
	case stats.Delivered:
		s.metrics.NoticesInWindow.Add(float64(stats.InWindow))
		s.metrics.Runs.WithLabelValues(outcomeSent).Inc()
		s.metrics.LastSuccess.Set(float64(s.clock.Now().Unix()))
	default:
		s.metrics.Runs.WithLabelValues(outcomeEmpty).Inc()
		s.metrics.LastSuccess.Set(float64(s.clock.Now().Unix()))
	}

	if err == nil {
		logger.Info("run completed",
			"fetched", stats.Fetched,
			"in_window", stats.InWindow,
			"delivered", stats.Delivered,
			"published", stats.Published,
			"errors", stats.Errors,
			"duration", stats.Duration,
		)
	}

	if pushErr := s.metrics.Push(ctx); pushErr != nil {
		logger.Warn("push metrics failed", "error", pushErr)
	}
}
