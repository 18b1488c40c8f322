package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Tactics TacticsConfig `mapstructure:"tactics"`
	Map     MapConfig     `mapstructure:"map"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Demo    DemoConfig    `mapstructure:"demo"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// TacticsConfig holds the squad engine thresholds. Distances are world units.
type TacticsConfig struct {
	UseCombatSimulation bool `mapstructure:"use_combat_simulation"`
	NearEnemyRadius     int  `mapstructure:"near_enemy_radius"`
	RangeBuffer         int  `mapstructure:"range_buffer"`
	RetreatSwitchTicks  int  `mapstructure:"retreat_switch_ticks"`
	CombatRegroupRadius int  `mapstructure:"combat_regroup_radius"`
	ShortRangeThreshold int  `mapstructure:"short_range_threshold"`
}

// MapConfig holds map indexing and generation settings
type MapConfig struct {
	Width                 int     `mapstructure:"width"`
	Height                int     `mapstructure:"height"`
	Seed                  int64   `mapstructure:"seed"`
	DepotClearance        int     `mapstructure:"depot_clearance"`
	DistanceCacheCapacity int     `mapstructure:"distance_cache_capacity"`
	WallRatio             int     `mapstructure:"wall_ratio"`
	WallMinLength         int     `mapstructure:"wall_min_length"`
	WallMaxLengthRatio    float64 `mapstructure:"wall_max_length_ratio"`
	ResourceClusters      int     `mapstructure:"resource_clusters"`
}

// EngineConfig holds tick driver settings
type EngineConfig struct {
	TickBudgetMs         int `mapstructure:"tick_budget_ms"`
	AlertCooldownSeconds int `mapstructure:"alert_cooldown_seconds"`
	SightRange           int `mapstructure:"sight_range"`
}

// DemoConfig holds settings for the scripted skirmish
type DemoConfig struct {
	Ticks          int `mapstructure:"ticks"`
	TickIntervalMs int `mapstructure:"tick_interval_ms"`
	SquadSize      int `mapstructure:"squad_size"`
	EnemyCount     int `mapstructure:"enemy_count"`

	// HistoryCapacity bounds the in-memory decision history
	HistoryCapacity int `mapstructure:"history_capacity"`
	// HistoryFile receives the history as JSON lines when the run ends
	HistoryFile string `mapstructure:"history_file"`
}

// ServerConfig holds the health endpoint settings
type ServerConfig struct {
	Host                  string `mapstructure:"host"`
	Port                  int    `mapstructure:"port"`
	EnableReflection      bool   `mapstructure:"enable_reflection"`
	GracefulShutdownDelay int    `mapstructure:"graceful_shutdown_delay"`
}

// LoggingConfig holds log output settings. File is optional; when set, logs
// are also written there and rotated.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Tactics defaults
	v.SetDefault("tactics.use_combat_simulation", true)
	v.SetDefault("tactics.near_enemy_radius", 400)
	v.SetDefault("tactics.range_buffer", 128)
	v.SetDefault("tactics.retreat_switch_ticks", 100)
	v.SetDefault("tactics.combat_regroup_radius", 300)
	v.SetDefault("tactics.short_range_threshold", 32)

	// Map defaults
	v.SetDefault("map.width", 64)
	v.SetDefault("map.height", 48)
	v.SetDefault("map.seed", 0)
	v.SetDefault("map.depot_clearance", 3)
	v.SetDefault("map.distance_cache_capacity", 50)
	v.SetDefault("map.wall_ratio", 40)
	v.SetDefault("map.wall_min_length", 3)
	v.SetDefault("map.wall_max_length_ratio", 0.3)
	v.SetDefault("map.resource_clusters", 4)

	// Engine defaults
	v.SetDefault("engine.tick_budget_ms", 42)
	v.SetDefault("engine.alert_cooldown_seconds", 10)
	v.SetDefault("engine.sight_range", 7)

	// Demo defaults
	v.SetDefault("demo.ticks", 600)
	v.SetDefault("demo.tick_interval_ms", 0)
	v.SetDefault("demo.squad_size", 8)
	v.SetDefault("demo.enemy_count", 10)
	v.SetDefault("demo.history_capacity", 1000)
	v.SetDefault("demo.history_file", "")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 50061)
	v.SetDefault("server.enable_reflection", true)
	v.SetDefault("server.graceful_shutdown_delay", 5)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 14)
}

// Init initializes the configuration. Values from a .env file in the working
// directory are exported first so TAC_* overrides can live there.
func Init(configPath string) error {
	// Missing .env is normal
	_ = godotenv.Load(".env")

	v = viper.New()
	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/tactician")
	}

	v.SetEnvPrefix("TAC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing file, searched or explicit, falls back to defaults
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	next := &Config{}
	if err := v.Unmarshal(next); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(next); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	cfg = next
	return nil
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig reloads the config file on change. onChange receives the new
// config only when it decodes and validates; otherwise the old one stays.
func WatchConfig(onChange func(*Config), onError func(error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		next := &Config{}
		err := v.Unmarshal(next)
		if err == nil {
			err = Validate(next)
		}
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("reloading %s: %w", e.Name, err))
			}
			return
		}
		cfg = next
		if onChange != nil {
			onChange(next)
		}
	})
	v.WatchConfig()
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if c.Tactics.NearEnemyRadius < 0 {
		return fmt.Errorf("tactics.near_enemy_radius must be non-negative")
	}
	if c.Tactics.RangeBuffer < 0 {
		return fmt.Errorf("tactics.range_buffer must be non-negative")
	}
	if c.Tactics.RetreatSwitchTicks < 0 {
		return fmt.Errorf("tactics.retreat_switch_ticks must be non-negative")
	}
	if c.Tactics.CombatRegroupRadius <= 0 {
		return fmt.Errorf("tactics.combat_regroup_radius must be positive")
	}
	if c.Tactics.ShortRangeThreshold < 0 {
		return fmt.Errorf("tactics.short_range_threshold must be non-negative")
	}

	if c.Map.Width <= 0 || c.Map.Height <= 0 {
		return fmt.Errorf("map dimensions must be positive")
	}
	if c.Map.DepotClearance < 0 {
		return fmt.Errorf("map.depot_clearance must be non-negative")
	}
	if c.Map.DistanceCacheCapacity <= 0 {
		return fmt.Errorf("map.distance_cache_capacity must be positive")
	}
	if c.Map.WallRatio <= 0 {
		return fmt.Errorf("map.wall_ratio must be positive")
	}
	if c.Map.WallMaxLengthRatio <= 0 || c.Map.WallMaxLengthRatio > 1 {
		return fmt.Errorf("map.wall_max_length_ratio must be between 0 and 1")
	}
	if c.Map.ResourceClusters < 0 {
		return fmt.Errorf("map.resource_clusters must be non-negative")
	}

	if c.Engine.TickBudgetMs <= 0 {
		return fmt.Errorf("engine.tick_budget_ms must be positive")
	}
	if c.Engine.SightRange < 0 {
		return fmt.Errorf("engine.sight_range must be non-negative")
	}

	if c.Demo.Ticks < 0 || c.Demo.TickIntervalMs < 0 {
		return fmt.Errorf("demo.ticks and demo.tick_interval_ms must be non-negative")
	}
	if c.Demo.HistoryCapacity <= 0 {
		return fmt.Errorf("demo.history_capacity must be positive")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Server.GracefulShutdownDelay < 0 {
		return fmt.Errorf("server.graceful_shutdown_delay must be non-negative")
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json")
	}
	return nil
}
