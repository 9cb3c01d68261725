package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"mofa_notifier/internal/domain"
)

const (
	DefaultFeedURL       = "https://www.ezairyu.mofa.go.jp/opendata/area/newarrivalL.xml"
	DefaultTimezone      = domain.DefaultTimezone
	DefaultWindowMinutes = 1440
	DefaultTimeout       = 10 * time.Second

	// WebhookEnv supplies the webhook URL when the file leaves it empty.
	WebhookEnv = "SLACK_WEBHOOK_URL"
)

type Config struct {
	Feed     FeedConfig     `yaml:"feed"`
	Slack    SlackConfig    `yaml:"slack"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Lookup   LookupConfig   `yaml:"lookup"`
	LogLevel string         `yaml:"log_level" validate:"oneof=debug info warn error"`
}

type FeedConfig struct {
	URL           string        `yaml:"url" validate:"required,url"`
	Timeout       time.Duration `yaml:"timeout" validate:"gt=0"`
	WindowMinutes int           `yaml:"window_minutes" validate:"gt=0"`
	Timezone      string        `yaml:"timezone" validate:"required"`
}

// Window returns the trailing window as a duration.
func (f FeedConfig) Window() time.Duration {
	return time.Duration(f.WindowMinutes) * time.Minute
}

// SlackConfig describes webhook delivery. WebhookURL may be empty: delivery
// then fails with a configuration error, but only once there is something to send.
type SlackConfig struct {
	WebhookURL string        `yaml:"webhook_url" validate:"omitempty,url"`
	Timeout    time.Duration `yaml:"timeout" validate:"gt=0"`
	Username   string        `yaml:"username"`
	IconEmoji  string        `yaml:"icon_emoji"`
}

// RabbitMQConfig enables digest fan-out when URL is set.
type RabbitMQConfig struct {
	URL        string `yaml:"url" validate:"omitempty,url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

// MetricsConfig enables pushing run metrics when PushgatewayURL is set.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url" validate:"omitempty,url"`
	Job            string `yaml:"job"`
}

// ScheduleConfig runs the notifier in-process on a cron spec. Empty means
// one run and exit.
type ScheduleConfig struct {
	Cron string `yaml:"cron"`
}

// LookupConfig supplies display labels keyed by the feed's country/cd and
// infoType codes. Country labels override the feed-supplied name; notice
// type labels overlay the built-in ones.
type LookupConfig struct {
	Countries   map[string]string `yaml:"countries" validate:"dive,keys,required,endkeys,required"`
	NoticeTypes map[string]string `yaml:"notice_types" validate:"dive,keys,required,endkeys,required"`
}

// Load reads the YAML file at path, expanding ${VAR} references from the
// environment (and .env, if present). A missing file is not an error: the
// compiled-in defaults apply.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks field values after defaults have been applied.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			// Values are left out: some fields carry credentials.
			return fmt.Errorf("invalid config: %s failed %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Feed.URL == "" {
		c.Feed.URL = DefaultFeedURL
	}
	if c.Feed.Timeout == 0 {
		c.Feed.Timeout = DefaultTimeout
	}
	if c.Feed.WindowMinutes == 0 {
		c.Feed.WindowMinutes = DefaultWindowMinutes
	}
	if c.Feed.Timezone == "" {
		c.Feed.Timezone = DefaultTimezone
	}
	if c.Slack.WebhookURL == "" {
		c.Slack.WebhookURL = os.Getenv(WebhookEnv)
	}
	if c.Slack.Timeout == 0 {
		c.Slack.Timeout = DefaultTimeout
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "mofa_notifier"
	}
	if c.RabbitMQ.RoutingKey == "" {
		c.RabbitMQ.RoutingKey = "digests"
	}
	if c.RabbitMQ.QueueName == "" {
		c.RabbitMQ.QueueName = "mofa_digests"
	}
	if c.Metrics.Job == "" {
		c.Metrics.Job = "mofa_notifier"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
