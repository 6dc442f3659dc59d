package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	str2duration "github.com/xhit/go-str2duration/v2"
)

const (
	SourceZamunda    = "zamunda"
	SourceZamundaCH  = "zamunda.ch"
	SourceZamundaSE  = "zamunda.se"
	SourceZamundaRip = "zamunda.rip"
	SourceArenaBG    = "arenabg"
)

var AllSources = []string{SourceZamunda, SourceZamundaCH, SourceZamundaSE, SourceZamundaRip, SourceArenaBG}

type Credentials struct {
	Username string
	Password string
}

func (c Credentials) IsSet() bool {
	return c.Username != "" && c.Password != ""
}

type Config struct {
	Credentials        Credentials
	ZamundaCredentials Credentials
	ArenaBGCredentials Credentials

	Sources []string

	RequestTimeout time.Duration
	PageTimeout    time.Duration
	LoginTimeout   time.Duration

	FormatterConcurrency int
	DetailConcurrency    int
	TorrentCacheSize     int
	ZamundaRipLimit      int

	RedisHost        string
	DocumentCacheTTL time.Duration

	ListenAddr  string
	MetricsAddr string
	LogLevel    string
	LogFormat   string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sources", strings.Join(AllSources, ","))
	v.SetDefault("request_timeout", "10s")
	v.SetDefault("page_timeout", "15s")
	v.SetDefault("login_timeout", "15s")
	v.SetDefault("formatter_concurrency", 3)
	v.SetDefault("detail_concurrency", 5)
	v.SetDefault("torrent_cache_size", 50)
	v.SetDefault("zamunda_rip_limit", 50)
	v.SetDefault("document_cache_ttl", "30m")
	v.SetDefault("listen_addr", ":7000")
	v.SetDefault("metrics_addr", ":8081")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	for _, key := range []string{
		"username", "password",
		"zamunda_username", "zamunda_password",
		"arenabg_username", "arenabg_password",
		"redis_host",
	} {
		v.SetDefault(key, "")
	}
}

// Load builds the configuration from, in increasing precedence: defaults, the
// optional configFile, a .env file in the working directory and the process
// environment.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		Credentials: Credentials{
			Username: v.GetString("username"),
			Password: v.GetString("password"),
		},
		ZamundaCredentials: Credentials{
			Username: v.GetString("zamunda_username"),
			Password: v.GetString("zamunda_password"),
		},
		ArenaBGCredentials: Credentials{
			Username: v.GetString("arenabg_username"),
			Password: v.GetString("arenabg_password"),
		},
		Sources:              parseList(v.GetStringSlice("sources")),
		FormatterConcurrency: v.GetInt("formatter_concurrency"),
		DetailConcurrency:    v.GetInt("detail_concurrency"),
		TorrentCacheSize:     v.GetInt("torrent_cache_size"),
		ZamundaRipLimit:      v.GetInt("zamunda_rip_limit"),
		RedisHost:            v.GetString("redis_host"),
		ListenAddr:           v.GetString("listen_addr"),
		MetricsAddr:          v.GetString("metrics_addr"),
		LogLevel:             v.GetString("log_level"),
		LogFormat:            v.GetString("log_format"),
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"request_timeout", &cfg.RequestTimeout},
		{"page_timeout", &cfg.PageTimeout},
		{"login_timeout", &cfg.LoginTimeout},
		{"document_cache_ttl", &cfg.DocumentCacheTTL},
	}
	for _, d := range durations {
		parsed, err := str2duration.ParseDuration(v.GetString(d.key))
		if err != nil {
			return nil, fmt.Errorf("invalid duration for %s: %w", strings.ToUpper(d.key), err)
		}
		*d.dst = parsed
	}

	for _, s := range cfg.Sources {
		if !slices.Contains(AllSources, s) {
			return nil, fmt.Errorf("unknown source %q, expected one of %s", s, strings.Join(AllSources, ", "))
		}
	}

	return cfg, nil
}

// CredentialsFor returns the per-family override for a source when set, else
// the shared credentials.
func (c *Config) CredentialsFor(source string) Credentials {
	switch source {
	case SourceZamunda, SourceZamundaCH, SourceZamundaSE:
		if c.ZamundaCredentials.IsSet() {
			return c.ZamundaCredentials
		}
	case SourceArenaBG:
		if c.ArenaBGCredentials.IsSet() {
			return c.ArenaBGCredentials
		}
	}
	return c.Credentials
}

func (c *Config) SourceEnabled(source string) bool {
	return slices.Contains(c.Sources, source)
}

// parseList accepts both a YAML list and a comma separated string.
func parseList(raw []string) []string {
	var out []string
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, strings.ToLower(part))
			}
		}
	}
	return out
}
