package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the synthesis service's top-level configuration, merged from
// DefaultConfig(), an optional config file, environment variables prefixed
// SUPERTONIC_, and CLI flags (highest precedence).
type Config struct {
	Paths    PathsConfig   `mapstructure:"paths"`
	Runtime  RuntimeConfig `mapstructure:"runtime"`
	Server   ServerConfig  `mapstructure:"server"`
	TTS      TTSConfig     `mapstructure:"tts"`
	LogLevel string        `mapstructure:"log_level"`
}

// PathsConfig locates the synthesis assets on disk: tts.json,
// unicode_indexer.json, the four ONNX graphs, and voice_styles/, all
// resolved by fixed filename under a single root (§6.2 — no manifest file).
type PathsConfig struct {
	AssetRoot string `mapstructure:"asset_root"`
}

// RuntimeConfig controls the ONNX Runtime binding.
type RuntimeConfig struct {
	Threads        int    `mapstructure:"threads"`
	ORTLibraryPath string `mapstructure:"ort_library_path"`
	ORTVersion     string `mapstructure:"ort_version"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr"`
	Workers         int    `mapstructure:"workers"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout_secs"`
	MaxTextBytes    int    `mapstructure:"max_text_bytes"`
	RequestTimeout  int    `mapstructure:"request_timeout_secs"`
}

// TTSConfig holds synthesis defaults. The synth command applies
// ClientDefaultSpeed, DefaultTotalStep and SilenceSeconds when the matching
// input is omitted. The HTTP server applies only ServerDefaultSpeed; its
// requests otherwise take the façade's built-in step count (5) and
// inter-chunk silence (0.3 s). Server-side and CLI-side default speeds
// differ on purpose (§9 Open Question 1): the server favors a slightly
// faster narration pace, the CLI defaults to natural speed.
type TTSConfig struct {
	ServerDefaultSpeed float64 `mapstructure:"server_default_speed"`
	ClientDefaultSpeed float64 `mapstructure:"client_default_speed"`
	DefaultTotalStep   int     `mapstructure:"default_total_step"`
	SilenceSeconds     float64 `mapstructure:"silence_seconds"`
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

// LoadOptions parameterizes Load.
type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

// DefaultConfig returns the configuration baseline every Load call starts
// from.
func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			AssetRoot: "assets",
		},
		Runtime: RuntimeConfig{
			Threads:        4,
			ORTLibraryPath: "",
			ORTVersion:     "",
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			Workers:         4,
			ShutdownTimeout: 30,
			MaxTextBytes:    16384,
			RequestTimeout:  60,
		},
		TTS: TTSConfig{
			ServerDefaultSpeed: 1.05,
			ClientDefaultSpeed: 1.0,
			DefaultTotalStep:   5,
			SilenceSeconds:     0.3,
		},
		LogLevel: "info",
	}
}

// RegisterFlags registers every config field as a CLI flag on fs, defaulted
// from defaults.
func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("paths-asset-root", defaults.Paths.AssetRoot, "Root directory for tts.json, unicode_indexer.json, ONNX graphs, and voice_styles/")
	fs.Int("runtime-threads", defaults.Runtime.Threads, "ONNX Runtime intra-op thread count")
	fs.String("runtime-ort-library-path", defaults.Runtime.ORTLibraryPath, "Path to ONNX Runtime shared library")
	fs.String("ort-lib", defaults.Runtime.ORTLibraryPath, "Path to ONNX Runtime shared library (alias for --runtime-ort-library-path)")
	fs.String("runtime-ort-version", defaults.Runtime.ORTVersion, "Expected ONNX Runtime version")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("workers", defaults.Server.Workers, "Max concurrent synthesis requests served at once")
	fs.Int("shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown drain timeout in seconds")
	fs.Int("max-text-bytes", defaults.Server.MaxTextBytes, "Maximum POST /tts text size in bytes")
	fs.Int("request-timeout", defaults.Server.RequestTimeout, "Per-request synthesis timeout in seconds")
	fs.Float64("server-default-speed", defaults.TTS.ServerDefaultSpeed, "Default speed for server-side synthesis requests")
	fs.Float64("client-default-speed", defaults.TTS.ClientDefaultSpeed, "Default speed for client-side (CLI) synthesis")
	fs.Int("default-total-step", defaults.TTS.DefaultTotalStep, "Default denoising loop step count")
	fs.Float64("silence-seconds", defaults.TTS.SilenceSeconds, "Inter-chunk silence duration in seconds")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
}

// Load merges DefaultConfig, an optional config file, SUPERTONIC_-prefixed
// environment variables, and CLI flags bound via opts.Cmd, in increasing
// precedence.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("SUPERTONIC")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	if err := v.BindEnv("runtime.ort_library_path", "SUPERTONIC_ORT_LIB", "ORT_LIBRARY_PATH"); err != nil {
		return Config{}, fmt.Errorf("bind ort env vars: %w", err)
	}
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("supertonic")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.asset_root", c.Paths.AssetRoot)
	v.SetDefault("runtime.threads", c.Runtime.Threads)
	v.SetDefault("runtime.ort_library_path", c.Runtime.ORTLibraryPath)
	v.SetDefault("runtime.ort_version", c.Runtime.ORTVersion)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.workers", c.Server.Workers)
	v.SetDefault("server.shutdown_timeout_secs", c.Server.ShutdownTimeout)
	v.SetDefault("server.max_text_bytes", c.Server.MaxTextBytes)
	v.SetDefault("server.request_timeout_secs", c.Server.RequestTimeout)
	v.SetDefault("tts.server_default_speed", c.TTS.ServerDefaultSpeed)
	v.SetDefault("tts.client_default_speed", c.TTS.ClientDefaultSpeed)
	v.SetDefault("tts.default_total_step", c.TTS.DefaultTotalStep)
	v.SetDefault("tts.silence_seconds", c.TTS.SilenceSeconds)
	v.SetDefault("log_level", c.LogLevel)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("paths.asset_root", "paths-asset-root")
	v.RegisterAlias("runtime.threads", "runtime-threads")
	v.RegisterAlias("runtime.ort_library_path", "runtime-ort-library-path")
	v.RegisterAlias("runtime.ort_library_path", "ort-lib")
	v.RegisterAlias("runtime.ort_version", "runtime-ort-version")
	v.RegisterAlias("server.listen_addr", "server-listen-addr")
	v.RegisterAlias("server.workers", "workers")
	v.RegisterAlias("server.shutdown_timeout_secs", "shutdown-timeout")
	v.RegisterAlias("server.max_text_bytes", "max-text-bytes")
	v.RegisterAlias("server.request_timeout_secs", "request-timeout")
	v.RegisterAlias("tts.server_default_speed", "server-default-speed")
	v.RegisterAlias("tts.client_default_speed", "client-default-speed")
	v.RegisterAlias("tts.default_total_step", "default-total-step")
	v.RegisterAlias("tts.silence_seconds", "silence-seconds")
	v.RegisterAlias("log_level", "log-level")
}
