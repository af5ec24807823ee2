package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewConfig(t *testing.T) {
	t.Setenv("INDICO_API_TOKEN", "")
	path := writeConfig(t, `
indico:
  instance_url: https://indico.example
  event_id: 7
  api_token: file-token
  event_timezone: Europe/Zurich
  slack_filters:
    contribution:
      type: [Break]
slack:
  channel_map:
    Main Auditorium: main-auditorium
  webhooks:
    main-auditorium: https://hooks.slack.example/services/T/B/x
announce:
  poll_interval: 1m
  metrics_port: "9102"
protect:
  message: Registrants only
state_db: ":memory:"
`)

	config := NewConfig(path)

	if got := config.GetInstanceURL(); got != "https://indico.example" {
		t.Errorf("instance url = %q", got)
	}
	if got := config.GetEventID(); got != 7 {
		t.Errorf("event id = %d", got)
	}
	if got := config.GetAPIToken(); got != "file-token" {
		t.Errorf("api token = %q", got)
	}
	if got := config.GetTimezone(); got != "Europe/Zurich" {
		t.Errorf("timezone = %q", got)
	}
	if got := config.GetLocation().String(); got != "Europe/Zurich" {
		t.Errorf("location = %q", got)
	}
	filters := config.GetContributionTypeFilters()
	if len(filters) != 1 || filters[0] != "Break" {
		t.Errorf("filters = %v", filters)
	}
	if got := config.GetChannelMap()["Main Auditorium"]; got != "main-auditorium" {
		t.Errorf("channel map entry = %q", got)
	}
	if got := config.GetWebhooks()["main-auditorium"]; got == "" {
		t.Error("webhook entry missing")
	}
	if got := config.GetPollInterval(); got != time.Minute {
		t.Errorf("poll interval = %s", got)
	}
	if got := config.GetMetricsPort(); got != "9102" {
		t.Errorf("metrics port = %q", got)
	}
	if got := config.GetProtectMessage(); got != "Registrants only" {
		t.Errorf("protect message = %q", got)
	}
	if got := config.GetStateDBPath(); got != ":memory:" {
		t.Errorf("state db = %q", got)
	}
}

func TestNewConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
indico:
  event_id: 7
  api_token: file-token
  event_timezone: UTC
`)

	config := NewConfig(path)

	if got := config.GetInstanceURL(); got != "https://indico.global" {
		t.Errorf("default instance url = %q", got)
	}
	if got := config.GetPollInterval(); got != 30*time.Second {
		t.Errorf("default poll interval = %s", got)
	}
	if got := config.GetMetricsPort(); got != "8080" {
		t.Errorf("default metrics port = %q", got)
	}
	if got := config.GetProtectMessage(); got != DefaultProtectMessage {
		t.Errorf("default protect message = %q", got)
	}
	if got := config.GetStateDBPath(); got != "./inditools.db" {
		t.Errorf("default state db = %q", got)
	}
	if config.GetChannelMap() == nil || config.GetWebhooks() == nil {
		t.Error("maps should never be nil")
	}
}

func TestNewConfigNoTimezone(t *testing.T) {
	path := writeConfig(t, `
indico:
  event_id: 7
  api_token: file-token
`)

	config := NewConfig(path)

	// the local-zone fallback is for the clock only; on the wire an unset
	// timezone must stay empty, never "Local"
	if got := config.GetTimezone(); got != "" {
		t.Errorf("timezone = %q, want empty", got)
	}
	if config.GetLocation() != time.Local {
		t.Errorf("location = %v, want local", config.GetLocation())
	}
}

func TestNewConfigTokenFromEnv(t *testing.T) {
	t.Setenv("INDICO_API_TOKEN", "env-token")
	path := writeConfig(t, `
indico:
  event_id: 7
  api_token: file-token
  event_timezone: UTC
`)

	config := NewConfig(path)
	if got := config.GetAPIToken(); got != "env-token" {
		t.Errorf("api token = %q, want the environment override", got)
	}
}
