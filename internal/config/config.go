// Package config loads monitor settings from defaults, an optional YAML
// file, MONITOR_* environment variables and command-line flags, in that
// order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const EnvPrefix = "MONITOR_"

const (
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
	SourceS3       = "s3"
)

type Config struct {
	Log      LogConfig      `koanf:"log"`
	Poll     PollConfig     `koanf:"poll"`
	Source   SourceConfig   `koanf:"source"`
	API      APIConfig      `koanf:"api"`
	Postgres PostgresConfig `koanf:"postgres"`
	S3       S3Config       `koanf:"s3"`
	Valkey   ValkeyConfig   `koanf:"valkey"`
	Server   ServerConfig   `koanf:"server"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=console json"`
}

type PollConfig struct {
	Interval        time.Duration `koanf:"interval" validate:"gt=0"`
	RequestTimeout  time.Duration `koanf:"request_timeout" validate:"gt=0"`
	FetchOnActivate bool          `koanf:"fetch_on_activate"`
}

type SourceConfig struct {
	Kind string `koanf:"kind" validate:"oneof=http postgres s3"`
}

// APIConfig points at the shortlisting backend's REST API.
type APIConfig struct {
	BaseURL string        `koanf:"base_url" validate:"omitempty,url"`
	Timeout time.Duration `koanf:"timeout" validate:"gte=0"`
}

type PostgresConfig struct {
	URL string `koanf:"url"`
}

type S3Config struct {
	EndpointURL string `koanf:"endpoint_url" validate:"omitempty,url"`
	Region      string `koanf:"region"`
	AccessKey   string `koanf:"access_key"`
	SecretKey   string `koanf:"secret_key"`
	Bucket      string `koanf:"bucket"`
	Prefix      string `koanf:"prefix"`
}

// ValkeyConfig enables publishing updates when URL is set.
type ValkeyConfig struct {
	URL            string        `koanf:"url"`
	Password       string        `koanf:"password"`
	ChannelPrefix  string        `koanf:"channel_prefix"`
	PublishTimeout time.Duration `koanf:"publish_timeout" validate:"gte=0"`
}

type ServerConfig struct {
	Addr string `koanf:"addr" validate:"required"`
}

var validate = validator.New()

func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Poll: PollConfig{
			Interval:       3 * time.Second,
			RequestTimeout: 10 * time.Second,
		},
		Source: SourceConfig{Kind: SourceHTTP},
		API: APIConfig{
			BaseURL: "http://localhost:8000/api",
			Timeout: 15 * time.Second,
		},
		S3: S3Config{
			Region: "us-east-1",
			Prefix: "jobs/",
		},
		Valkey: ValkeyConfig{
			ChannelPrefix:  "job-updates:",
			PublishTimeout: 250 * time.Millisecond,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// DefaultConfigAsMap flattens DefaultConfig for confmap so that koanf knows every key.
func DefaultConfigAsMap() map[string]interface{} {
	def := DefaultConfig()

	return map[string]interface{}{
		"log.level":  def.Log.Level,
		"log.format": def.Log.Format,

		"poll.interval":          def.Poll.Interval,
		"poll.request_timeout":   def.Poll.RequestTimeout,
		"poll.fetch_on_activate": def.Poll.FetchOnActivate,

		"source.kind": def.Source.Kind,

		"api.base_url": def.API.BaseURL,
		"api.timeout":  def.API.Timeout,

		"postgres.url": def.Postgres.URL,

		"s3.endpoint_url": def.S3.EndpointURL,
		"s3.region":       def.S3.Region,
		"s3.access_key":   def.S3.AccessKey,
		"s3.secret_key":   def.S3.SecretKey,
		"s3.bucket":       def.S3.Bucket,
		"s3.prefix":       def.S3.Prefix,

		"valkey.url":             def.Valkey.URL,
		"valkey.password":        def.Valkey.Password,
		"valkey.channel_prefix":  def.Valkey.ChannelPrefix,
		"valkey.publish_timeout": def.Valkey.PublishTimeout,

		"server.addr": def.Server.Addr,
	}
}

// EnvKey maps MONITOR_POLL_REQUEST_TIMEOUT to poll.request_timeout: the
// first underscore separates the section from the key.
func EnvKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

// FlagKeys maps command-line flag names to config keys. Flags not listed
// here are not configuration.
var FlagKeys = map[string]string{
	"log-level":         "log.level",
	"log-format":        "log.format",
	"interval":          "poll.interval",
	"request-timeout":   "poll.request_timeout",
	"fetch-on-activate": "poll.fetch_on_activate",
	"source":            "source.kind",
	"api-url":           "api.base_url",
	"valkey-url":        "valkey.url",
	"addr":              "server.addr",
}

func flagKey(flags *pflag.FlagSet) func(f *pflag.Flag) (string, interface{}) {
	return func(f *pflag.Flag) (string, interface{}) {
		key, ok := FlagKeys[f.Name]
		if !ok {
			return "", nil
		}
		return key, posflag.FlagVal(flags, f)
	}
}

// LoadDotEnv reads .env style files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {

	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}

		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("error loading %s: %w", p, err)
		}
	}

	return nil
}

// Load merges every source into a validated Config. configFile and flags are optional.
func Load(configFile string, flags *pflag.FlagSet) (Config, error) {

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(DefaultConfigAsMap(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("error loading defaults: %w", err)
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("error loading config file %s: %w", configFile, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", EnvKey), nil); err != nil {
		return Config{}, fmt.Errorf("error loading environment variables: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagKey(flags)), nil); err != nil {
			return Config{}, fmt.Errorf("error loading command-line flags: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks field constraints and the settings the chosen source needs.
func (c *Config) Validate() error {

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch c.Source.Kind {
	case SourceHTTP:
		if c.API.BaseURL == "" {
			return fmt.Errorf("invalid configuration: api.base_url is required for the http source")
		}
	case SourcePostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("invalid configuration: postgres.url is required for the postgres source")
		}
	case SourceS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("invalid configuration: s3.bucket is required for the s3 source")
		}
	}

	return nil
}
