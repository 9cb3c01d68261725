package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/jonboulle/clockwork"

	"mofa_notifier/internal/config"
	"mofa_notifier/internal/digest"
	"mofa_notifier/internal/domain"
	"mofa_notifier/internal/lookup"
	"mofa_notifier/internal/notifier"
	"mofa_notifier/internal/observability"
	"mofa_notifier/internal/publisher"
	"mofa_notifier/internal/scheduler"
	"mofa_notifier/internal/service"
	"mofa_notifier/internal/source/mofa"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	os.Exit(run(*configPath))
}

func run(configPath string) int {
	logger := setupLogger("info")

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return 1
	}

	logger = setupLogger(cfg.LogLevel)

	location, ok := domain.LoadLocation(cfg.Feed.Timezone)
	if !ok {
		logger.Warn("timezone unavailable, treating feed times as UTC", "timezone", cfg.Feed.Timezone)
	}

	mofaSource := mofa.New(mofa.Config{
		URL:      cfg.Feed.URL,
		Timeout:  cfg.Feed.Timeout,
		Location: location,
	}, logger)

	slack := notifier.NewSlack(notifier.Config{
		WebhookURL: cfg.Slack.WebhookURL,
		Timeout:    cfg.Slack.Timeout,
		Username:   cfg.Slack.Username,
		IconEmoji:  cfg.Slack.IconEmoji,
	}, logger)

	// Left as a nil interface when fan-out is disabled.
	var digestPublisher service.Publisher
	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			return 1
		}
		defer rabbitMQ.Close()
		digestPublisher = rabbitMQ
	}

	metrics := observability.NewMetrics(observability.PushConfig{
		URL: cfg.Metrics.PushgatewayURL,
		Job: cfg.Metrics.Job,
	})

	labels := lookup.New(cfg.Lookup.Countries, cfg.Lookup.NoticeTypes)

	runService := service.NewRunService(
		mofaSource,
		slack,
		digestPublisher,
		digest.NewFormatter(labels),
		metrics,
		clockwork.NewRealClock(),
		location,
		logger,
		cfg.Feed,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Schedule.Cron == "" {
		return runOnce(ctx, runService, os.Stdout)
	}

	logger.Info("starting mofa notifier",
		"source", mofaSource.Name(),
		"cron", cfg.Schedule.Cron,
		"window", cfg.Feed.Window(),
	)

	sched := scheduler.NewScheduler(runService, cfg.Schedule.Cron, location, logger)
	if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scheduler error", "error", err)
		return 1
	}
	return 0
}

// runOnce writes the status line to out and returns the exit code. Failures
// are logged by the runner itself.
func runOnce(ctx context.Context, runner scheduler.Runner, out io.Writer) int {
	stats, err := runner.Run(ctx)
	if err != nil {
		return 1
	}
	fmt.Fprintln(out, stats.Summary())
	return 0
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}
