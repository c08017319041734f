package smoke

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries every externally tunable parameter of a smoke run.
// Zero configuration is required for the docker-compose development
// deployment; a YAML file can overlay any subset of fields.
type Config struct {
	// APIBase is the platform's REST prefix, without a trailing slash.
	APIBase string `yaml:"api_base"`
	// WSEndpoint is the real-time push endpoint (ws:// or wss://).
	WSEndpoint string `yaml:"ws_endpoint"`
	// CallbackHost is the hostname the platform uses to reach the stub
	// listeners. With a containerized platform and a host-side harness
	// this is the container-to-host alias, not localhost.
	CallbackHost string `yaml:"callback_host"`

	MetricsPort   int `yaml:"metrics_port"`
	WebhookPort   int `yaml:"webhook_port"`
	ChatBotPort   int `yaml:"chatbot_port"`
	MessagingPort int `yaml:"messaging_port"`

	AdminUser string `yaml:"admin_user"`
	AdminPass string `yaml:"admin_pass"`

	// HTTPTimeout bounds every single API call.
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	// PollTimeout and PollStep bound the eventually-consistent waits of
	// the slow suite. The timeout must cover at least two evaluation
	// cycles of the platform's rule engine.
	PollTimeout time.Duration `yaml:"poll_timeout"`
	PollStep    time.Duration `yaml:"poll_step"`
	// CaptureTimeout bounds the background WebSocket capture.
	CaptureTimeout time.Duration `yaml:"capture_timeout"`
	// BreachWait is the fixed sleep that lets the SLA response window
	// of the one-minute test policy expire.
	BreachWait time.Duration `yaml:"breach_wait"`
}

// DefaultConfig returns the configuration matching the development
// deployment of the platform.
func DefaultConfig() Config {
	return Config{
		APIBase:        "http://localhost:8080/api/v1",
		WSEndpoint:     "ws://localhost:8080/api/v1/ws",
		CallbackHost:   "host.docker.internal",
		MetricsPort:    18081,
		WebhookPort:    18082,
		ChatBotPort:    18083,
		MessagingPort:  18084,
		AdminUser:      "admin",
		AdminPass:      "admin123",
		HTTPTimeout:    15 * time.Second,
		PollTimeout:    140 * time.Second,
		PollStep:       5 * time.Second,
		CaptureTimeout: 160 * time.Second,
		BreachWait:     70 * time.Second,
	}
}

// LoadConfig returns the defaults, overlaid with the YAML file at path
// when one is given.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot produce a meaningful run.
func (c Config) Validate() error {
	if c.APIBase == "" {
		return fmt.Errorf("api_base must not be empty")
	}
	if c.WSEndpoint == "" {
		return fmt.Errorf("ws_endpoint must not be empty")
	}
	if c.CallbackHost == "" {
		return fmt.Errorf("callback_host must not be empty")
	}
	for name, port := range map[string]int{
		"metrics_port":   c.MetricsPort,
		"webhook_port":   c.WebhookPort,
		"chatbot_port":   c.ChatBotPort,
		"messaging_port": c.MessagingPort,
	} {
		if port < 0 || port > 65535 {
			return fmt.Errorf("%s %d is out of range", name, port)
		}
	}
	for name, d := range map[string]time.Duration{
		"http_timeout":    c.HTTPTimeout,
		"poll_timeout":    c.PollTimeout,
		"poll_step":       c.PollStep,
		"capture_timeout": c.CaptureTimeout,
		"breach_wait":     c.BreachWait,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %v", name, d)
		}
	}
	if c.PollStep > c.PollTimeout {
		return fmt.Errorf("poll_step %v exceeds poll_timeout %v", c.PollStep, c.PollTimeout)
	}
	return nil
}
