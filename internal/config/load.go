package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides for every key, e.g.
// DIGEST_SERVER_ADDR for server.addr.
const EnvPrefix = "DIGEST"

// legacyEnv maps config keys to the bare environment variable names the job
// has always been deployed with.
var legacyEnv = map[string][]string{
	"weather.api_key": {"tomorrow_api_key", "TOMORROW_API_KEY"},
	"news.api_key":    {"news_api_key", "NEWS_API_KEY"},
	"openai.api_key":  {"openai_api_key", "OPENAI_API_KEY"},
	"mail.sender":     {"sender_email", "SENDER_EMAIL"},
	"mail.password":   {"sender_password", "SENDER_PASSWORD"},
	"mail.recipient":  {"recipient_email", "RECIPIENT_EMAIL"},
	"auth.run_token":  {"run_token", "RUN_TOKEN"},
}

// Load reads config.yaml (or cfgFile), applies environment overrides and
// defaults. A missing config file is not an error.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	var cfg Config

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/daily-digest")
		v.AddConfigPath("configs")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only covers keys viper already knows about, so bind every
	// key explicitly for env-only deployments.
	for _, key := range Keys() {
		names := []string{key, EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}
		names = append(names, legacyEnv[key]...)
		if err := v.BindEnv(names...); err != nil {
			return cfg, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.FillDefaults()
	return cfg, nil
}

// Keys lists every dotted configuration key, derived from the mapstructure
// tags of Config.
func Keys() []string {
	return collectKeys(reflect.TypeOf(Config{}), "")
}

func collectKeys(t reflect.Type, prefix string) []string {
	var out []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if f.Type.Kind() == reflect.Struct {
			out = append(out, collectKeys(f.Type, key)...)
			continue
		}
		out = append(out, key)
	}
	return out
}
