package utils

import (
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultProtectMessage is shown to everyone hovering the attachment,
// even when not logged in.
const DefaultProtectMessage = "The organisers have restricted access to this material to registrants only"

type rawConfig struct {
	Indico struct {
		InstanceURL   string `yaml:"instance_url"`
		EventID       int    `yaml:"event_id"`
		APIToken      string `yaml:"api_token"`
		EventTimezone string `yaml:"event_timezone"`
		SlackFilters  struct {
			Contribution struct {
				Type []string `yaml:"type"`
			} `yaml:"contribution"`
		} `yaml:"slack_filters"`
	} `yaml:"indico"`
	Slack struct {
		ChannelMap map[string]string `yaml:"channel_map"`
		Webhooks   map[string]string `yaml:"webhooks"`
	} `yaml:"slack"`
	Announce struct {
		PollInterval string `yaml:"poll_interval"`
		MetricsPort  string `yaml:"metrics_port"`
	} `yaml:"announce"`
	Protect struct {
		Message string `yaml:"message"`
	} `yaml:"protect"`
	StateDB string `yaml:"state_db"`
}

type Config struct {
	instanceURL string
	eventID     int
	apiToken    string
	timezone    string
	location    *time.Location

	contributionTypeFilters []string

	channelMap map[string]string
	webhooks   map[string]string

	pollInterval time.Duration
	metricsPort  string

	protectMessage string
	stateDBPath    string
}

func NewConfig(path string) *Config {
	file, err := os.ReadFile(path)
	if err != nil {
		slog.Error("can't read config file", "path", path, "error", err)
		os.Exit(1)
	}
	var raw rawConfig
	if err := yaml.Unmarshal(file, &raw); err != nil {
		slog.Error("can't parse config file", "path", path, "error", err)
		os.Exit(1)
	}

	return &Config{
		instanceURL: func() string {
			instanceURL := raw.Indico.InstanceURL
			if instanceURL == "" {
				instanceURL = "https://indico.global"
			}
			slog.Debug("config", "indico.instance_url", instanceURL)
			return instanceURL
		}(),
		eventID: func() int {
			if raw.Indico.EventID == 0 {
				slog.Error("indico.event_id is not set")
				os.Exit(1)
			}
			slog.Debug("config", "indico.event_id", raw.Indico.EventID)
			return raw.Indico.EventID
		}(),
		apiToken: func() string {
			// INDICO_API_TOKEN wins so the secret can stay out of the
			// config file
			apiToken := os.Getenv("INDICO_API_TOKEN")
			if apiToken == "" {
				apiToken = raw.Indico.APIToken
			}
			if apiToken == "" {
				slog.Error("indico.api_token is not set (config file or INDICO_API_TOKEN)")
				os.Exit(1)
			}
			slog.Debug("config", "indico.api_token", apiToken[0:3]+"...")
			return apiToken
		}(),
		timezone: raw.Indico.EventTimezone,
		location: func() *time.Location {
			timezoneStr := raw.Indico.EventTimezone
			var loc *time.Location
			var err error
			switch timezoneStr {
			case "":
				slog.Warn("indico.event_timezone is not set, using local timezone", "timezone", time.Local)
				loc = time.Local
			case "UTC":
				loc = time.UTC
			default:
				loc, err = time.LoadLocation(timezoneStr)
				if err != nil {
					slog.Error("invalid timezone", "timezone", timezoneStr, "error", err)
					os.Exit(1)
				}
			}
			slog.Debug("config", "indico.event_timezone", timezoneStr)
			return loc
		}(),
		contributionTypeFilters: func() []string {
			filters := raw.Indico.SlackFilters.Contribution.Type
			slog.Debug("config", "indico.slack_filters.contribution.type", filters)
			return filters
		}(),
		channelMap: func() map[string]string {
			if raw.Slack.ChannelMap == nil {
				return map[string]string{}
			}
			return raw.Slack.ChannelMap
		}(),
		webhooks: func() map[string]string {
			if raw.Slack.Webhooks == nil {
				return map[string]string{}
			}
			return raw.Slack.Webhooks
		}(),
		pollInterval: func() time.Duration {
			pollInterval := raw.Announce.PollInterval
			if pollInterval == "" {
				pollInterval = "30s"
			}
			duration, err := time.ParseDuration(pollInterval)
			if err != nil {
				slog.Error("invalid announce.poll_interval", "error", err)
				os.Exit(1)
			}
			slog.Debug("config", "announce.poll_interval", duration)
			return duration
		}(),
		metricsPort: func() string {
			port := raw.Announce.MetricsPort
			if port == "" {
				port = "8080"
			}
			slog.Debug("config", "announce.metrics_port", port)
			return port
		}(),
		protectMessage: func() string {
			message := raw.Protect.Message
			if message == "" {
				message = DefaultProtectMessage
			}
			return message
		}(),
		stateDBPath: func() string {
			stateDBPath := raw.StateDB
			if stateDBPath == "" {
				stateDBPath = "./inditools.db"
			}
			slog.Debug("config", "state_db", stateDBPath)
			return stateDBPath
		}(),
	}
}

// Get indico.instance_url, default https://indico.global
func (c *Config) GetInstanceURL() string {
	return c.instanceURL
}

// Get indico.event_id
func (c *Config) GetEventID() int {
	return c.eventID
}

// Get indico.api_token, overridable with INDICO_API_TOKEN
func (c *Config) GetAPIToken() string {
	return c.apiToken
}

// Get indico.event_timezone verbatim, empty when unset; this is what goes
// on the wire as the tz query param, so never substitute a local zone here
func (c *Config) GetTimezone() string {
	return c.timezone
}

// Get indico.event_timezone as a location, local timezone when unset
func (c *Config) GetLocation() *time.Location {
	return c.location
}

// Get indico.slack_filters.contribution.type
func (c *Config) GetContributionTypeFilters() []string {
	return c.contributionTypeFilters
}

// Get slack.channel_map (room name -> channel name)
func (c *Config) GetChannelMap() map[string]string {
	return c.channelMap
}

// Get slack.webhooks (channel name -> webhook URL)
func (c *Config) GetWebhooks() map[string]string {
	return c.webhooks
}

// Get announce.poll_interval, default 30s
func (c *Config) GetPollInterval() time.Duration {
	return c.pollInterval
}

// Get announce.metrics_port, default 8080
func (c *Config) GetMetricsPort() string {
	return c.metricsPort
}

// Get protect.message, default DefaultProtectMessage
func (c *Config) GetProtectMessage() string {
	return c.protectMessage
}

// Get state_db, default ./inditools.db; ":memory:" keeps the ledger
// in-process only
func (c *Config) GetStateDBPath() string {
	return c.stateDBPath
}
