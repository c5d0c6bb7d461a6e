package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Web    WebConfig         `yaml:"web"`
	Store  StoreConfig       `yaml:"store"`
	Events EventsConfig      `yaml:"events"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	return c.Events.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// WebConfig holds the frontend serving configuration. StaticDir may be
// empty, in which case a minimal embedded shell is served instead of a
// built frontend.
type WebConfig struct {
	StaticDir string `yaml:"static_dir"`
}

// StoreConfig holds the board store configuration. An empty DSN keeps the
// store in process memory, which is the intended deployment. Boards do not
// survive a restart.
type StoreConfig struct {
	DSN string `yaml:"dsn"`
}

// EventsConfig holds the SSE broker configuration.
type EventsConfig struct {
	KeepaliveSeconds int `yaml:"keepalive_seconds"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.KeepaliveSeconds, validation.Required, validation.Min(1)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Events: EventsConfig{
			KeepaliveSeconds: 30,
		},
	}
}
