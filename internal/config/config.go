package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultUserAgent is the default User-Agent string sent with all HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:147.0) Gecko/20100101 Firefox/147.0"

type Config struct {
	CatalogURL            string `mapstructure:"catalog_url"`
	ProxyConnectionString string `mapstructure:"proxy_connection_string"`
	ClientTimeout         string `mapstructure:"client_timeout"` // Go duration string like "30s", "1h", etc.
	UserAgent             string `mapstructure:"user_agent"`
	LogLevel              string `mapstructure:"log_level"`
	SentryDSN             string `mapstructure:"sentry_dsn"`
	Download              struct {
		Method         string `mapstructure:"method"`
		OutputDir      string `mapstructure:"output_dir"`
		FFmpegPath     string `mapstructure:"ffmpeg_path"`
		YtDlpPath      string `mapstructure:"ytdlp_path"`
		StreamlinkPath string `mapstructure:"streamlink_path"`
	} `mapstructure:"download"`
	Cache struct {
		Type     string `mapstructure:"type"`      // "sqlite", "memory" or "redis"
		Size     int    `mapstructure:"size"`      // Maximum number of thumbnails kept
		MaxBytes int64  `mapstructure:"max_bytes"` // Memory provider only: total image bytes kept
		TTL      string `mapstructure:"ttl"`       // Go duration string like "1h", "24h", etc.
		SQLite   struct {
			Path string `mapstructure:"path"`
		} `mapstructure:"sqlite"`
		Redis struct {
			Address  string `mapstructure:"address"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"cache"`
	Metrics struct {
		Enabled bool   `mapstructure:"enabled"`
		Address string `mapstructure:"address"`
		Port    int    `mapstructure:"port"`
	} `mapstructure:"metrics"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger

	// logOutput receives every log line. Stdout is reserved for command output.
	logOutput io.Writer = os.Stderr
)

func init() {
	logger = newConsoleLogger(logOutput)

	config, err := LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	level := zerolog.InfoLevel
	if config.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", config.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(level)
	logger = logger.Level(level)

	logger.Debug().Str("level", level.String()).Msg("Logging configured")
	globalConfig = config
}

// newConsoleLogger builds a human-readable zerolog logger writing to out
func newConsoleLogger(out io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:     out,
		NoColor: false,
	}).With().Timestamp().Logger()
}

// LoadConfig reads config.yaml from the working directory (or ./config) and overlays
// APP_* environment variables.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = viper.BindEnv("log_level", "LOG_LEVEL")

	// Every key needs a default so AutomaticEnv can populate it on Unmarshal
	viper.SetDefault("catalog_url", "")
	viper.SetDefault("proxy_connection_string", "")
	viper.SetDefault("user_agent", "")
	viper.SetDefault("sentry_dsn", "")
	viper.SetDefault("client_timeout", "30s")
	viper.SetDefault("download.ffmpeg_path", "")
	viper.SetDefault("download.ytdlp_path", "")
	viper.SetDefault("download.streamlink_path", "")
	viper.SetDefault("cache.redis.address", "")
	viper.SetDefault("cache.redis.password", "")
	viper.SetDefault("cache.redis.db", 0)
	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("download.method", "streamlink")
	viper.SetDefault("download.output_dir", ".")
	viper.SetDefault("cache.type", "sqlite")
	viper.SetDefault("cache.size", 500)
	viper.SetDefault("cache.max_bytes", 64<<20)
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.sqlite.path", defaultCachePath())
	viper.SetDefault("metrics.address", "localhost")
	viper.SetDefault("metrics.port", 9090)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	return &config, nil
}

// defaultCachePath places the thumbnail database in the user cache directory, falling
// back to the working directory when the platform has none.
func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "plutodl-cache.db"
	}
	return filepath.Join(dir, "plutodl", "cache.db")
}

func GetConfig() *Config {
	return globalConfig
}

func GetUserAgent() string {
	if globalConfig != nil && globalConfig.UserAgent != "" {
		return globalConfig.UserAgent
	}

	return DefaultUserAgent
}

func GetLogger() zerolog.Logger {
	return logger
}
