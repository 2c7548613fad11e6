package config

import (
	"errors"
	"strings"
	"time"

	"daily-digest/internal/model"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// ServerConfig controls the HTTP trigger server.
type ServerConfig struct {
	Addr         string `mapstructure:"addr" yaml:"addr"`
	ReadTimeout  string `mapstructure:"read_timeout" yaml:"read_timeout"`   // duration string, e.g., "10s"
	WriteTimeout string `mapstructure:"write_timeout" yaml:"write_timeout"` // must outlast a whole pipeline run
	GinMode      string `mapstructure:"gin_mode" yaml:"gin_mode"`           // debug | release | test
}

// AuthConfig holds the shared secret for the trigger endpoint.
type AuthConfig struct {
	RunToken string `mapstructure:"run_token" yaml:"run_token"`
}

// HTTPConfig applies to every outbound API client.
type HTTPConfig struct {
	Timeout string `mapstructure:"timeout" yaml:"timeout"` // duration string, e.g., "30s"
}

// WeatherConfig controls the tomorrow.io forecast source.
type WeatherConfig struct {
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL   string `mapstructure:"base_url" yaml:"base_url"`
	Latitude  string `mapstructure:"latitude" yaml:"latitude"`
	Longitude string `mapstructure:"longitude" yaml:"longitude"`
}

// NewsConfig controls the newsdata.io search source.
type NewsConfig struct {
	APIKey   string   `mapstructure:"api_key" yaml:"api_key"`
	BaseURL  string   `mapstructure:"base_url" yaml:"base_url"`
	Language string   `mapstructure:"language" yaml:"language"`
	Keywords []string `mapstructure:"keywords" yaml:"keywords"`
}

// OpenAIConfig controls the summarizer.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`
	Model   string `mapstructure:"model" yaml:"model"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"` // optional
	Timeout string `mapstructure:"timeout" yaml:"timeout"`   // optional duration; empty means no client deadline
}

// MailConfig holds SMTP submission settings.
type MailConfig struct {
	Host      string `mapstructure:"host" yaml:"host"`
	Port      int    `mapstructure:"port" yaml:"port"`
	Sender    string `mapstructure:"sender" yaml:"sender"`
	Password  string `mapstructure:"password" yaml:"password"`
	Recipient string `mapstructure:"recipient" yaml:"recipient"`
}

// RedisConfig holds redis connection settings for the optional event sink.
// The sink is disabled when Addr is empty.
type RedisConfig struct {
	Addr      string `mapstructure:"addr" yaml:"addr"`
	Username  string `mapstructure:"username" yaml:"username"`
	Password  string `mapstructure:"password" yaml:"password"`
	DB        int    `mapstructure:"db" yaml:"db"`
	EventsKey string `mapstructure:"events_key" yaml:"events_key"`
	MaxEvents int64  `mapstructure:"max_events" yaml:"max_events"`
}

// ScheduleConfig enables running the pipeline from inside the server.
type ScheduleConfig struct {
	Interval string `mapstructure:"interval" yaml:"interval"` // duration string; empty disables
}

// Config is the top-level configuration structure.
type Config struct {
	App      AppConfig      `mapstructure:"app" yaml:"app"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Auth     AuthConfig     `mapstructure:"auth" yaml:"auth"`
	HTTP     HTTPConfig     `mapstructure:"http" yaml:"http"`
	Weather  WeatherConfig  `mapstructure:"weather" yaml:"weather"`
	News     NewsConfig     `mapstructure:"news" yaml:"news"`
	OpenAI   OpenAIConfig   `mapstructure:"openai" yaml:"openai"`
	Mail     MailConfig     `mapstructure:"mail" yaml:"mail"`
	Redis    RedisConfig    `mapstructure:"redis" yaml:"redis"`
	Schedule ScheduleConfig `mapstructure:"schedule" yaml:"schedule"`
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "5m"
	}
	if c.Server.GinMode == "" {
		c.Server.GinMode = "release"
	}
	if c.HTTP.Timeout == "" {
		c.HTTP.Timeout = "30s"
	}
	if c.Weather.BaseURL == "" {
		c.Weather.BaseURL = "https://api.tomorrow.io"
	}
	if c.Weather.Latitude == "" && c.Weather.Longitude == "" {
		c.Weather.Latitude = "41.3341205"
		c.Weather.Longitude = "74.2213276"
	}
	if c.News.BaseURL == "" {
		c.News.BaseURL = "https://newsdata.io"
	}
	if c.News.Language == "" {
		c.News.Language = "en"
	}
	if len(c.News.Keywords) == 0 {
		c.News.Keywords = []string{"Tariffs", "Artificial Intelligence"}
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4"
	}
	if c.Mail.Host == "" {
		c.Mail.Host = "smtp.gmail.com"
	}
	if c.Mail.Port == 0 {
		c.Mail.Port = 465
	}
	if c.Redis.EventsKey == "" {
		c.Redis.EventsKey = "digest:events"
	}
	if c.Redis.MaxEvents == 0 {
		c.Redis.MaxEvents = 200
	}
}

// Validate checks the settings the trigger server cannot run without.
// API keys and mail credentials are not checked here; a missing one surfaces
// as an upstream failure during a run.
func (c Config) Validate() error {
	if c.Auth.RunToken == "" {
		return errors.New("auth.run_token is required (env run_token)")
	}
	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.New("server.gin_mode must be debug, release or test")
	}
	if _, err := time.ParseDuration(c.HTTP.Timeout); err != nil {
		return errors.New("invalid http.timeout: " + err.Error())
	}
	if c.OpenAI.Timeout != "" {
		if _, err := time.ParseDuration(c.OpenAI.Timeout); err != nil {
			return errors.New("invalid openai.timeout: " + err.Error())
		}
	}
	if strings.TrimSpace(c.Schedule.Interval) != "" {
		d, err := time.ParseDuration(c.Schedule.Interval)
		if err != nil {
			return errors.New("invalid schedule.interval: " + err.Error())
		}
		if d <= 0 {
			return errors.New("schedule.interval must be positive")
		}
	}
	return nil
}

// Location returns the configured forecast coordinates.
func (c Config) Location() model.Location {
	return model.Location{Latitude: c.Weather.Latitude, Longitude: c.Weather.Longitude}
}

// HTTPTimeout returns the parsed outbound client timeout, or 30s when unset
// or invalid.
func (c Config) HTTPTimeout() time.Duration {
	d, err := time.ParseDuration(c.HTTP.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// OpenAITimeout returns the summarizer client timeout. Zero (unset or
// invalid) leaves the request without a client deadline.
func (c Config) OpenAITimeout() time.Duration {
	d, err := time.ParseDuration(c.OpenAI.Timeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// Redacted returns a copy with every secret replaced by a fixed mask, for
// printing.
func (c Config) Redacted() Config {
	out := c
	out.Auth.RunToken = mask(c.Auth.RunToken)
	out.Weather.APIKey = mask(c.Weather.APIKey)
	out.News.APIKey = mask(c.News.APIKey)
	out.OpenAI.APIKey = mask(c.OpenAI.APIKey)
	out.Mail.Password = mask(c.Mail.Password)
	out.Redis.Password = mask(c.Redis.Password)
	out.News.Keywords = append([]string(nil), c.News.Keywords...)
	return out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}
