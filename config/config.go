package config

import (
	"fmt"

	"musicd/internal/logger"

	"github.com/spf13/viper"
)

// Config holds every absolute path the core needs but does not itself
// define (spec §6: "configuration (consumed, not defined by the
// core)"). LogFormat is the one genuinely core-owned setting, since the
// ambient logging stack lives inside this repository.
type Config struct {
	MusicSourceDir    string `mapstructure:"MUSIC_SOURCE_DIR"`
	MusicMountDir     string `mapstructure:"MUSIC_MOUNT_DIR"`
	MusicCacheDir     string `mapstructure:"MUSIC_CACHE_DIR"`
	CacheDatabasePath string `mapstructure:"MUSIC_CACHE_DB_PATH"`
	LogFormat         string `mapstructure:"MUSIC_LOG_FORMAT"`
}

var ConfigInstance Config

func InitConfig() (Config, error) {
	log := logger.New("config").Function("InitConfig")
	log.Info("Initializing config")

	viper.AutomaticEnv()

	envVars := []string{
		"MUSIC_SOURCE_DIR", "MUSIC_MOUNT_DIR", "MUSIC_CACHE_DIR",
		"MUSIC_CACHE_DB_PATH", "MUSIC_LOG_FORMAT",
	}

	for _, env := range envVars {
		if err := viper.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	envVarsSet := viper.IsSet("MUSIC_SOURCE_DIR") && viper.IsSet("MUSIC_CACHE_DB_PATH")

	if envVarsSet {
		log.Info("Environment variables detected, skipping file loading")
	} else {
		log.Info("Environment variables not found, attempting to load from files")

		viper.SetConfigFile(".env")
		viper.SetConfigType("env")

		if err := viper.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		viper.SetConfigFile(".env.local")
		if err := viper.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, log.Err("Fatal error: could not unmarshal config", err)
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
	}

	log.Info("Successfully initialized config", "config", cfg)
	if err := validateConfig(cfg, log); err != nil {
		return Config{}, err
	}
	return ConfigInstance, nil
}

func GetConfig() Config {
	return ConfigInstance
}

func validateConfig(cfg Config, log logger.Logger) error {
	if cfg.MusicSourceDir == "" {
		return log.Error("Fatal error: MUSIC_SOURCE_DIR is required")
	}
	if cfg.CacheDatabasePath == "" {
		return log.Err(
			"Fatal error: MUSIC_CACHE_DB_PATH is required",
			fmt.Errorf("empty cache database path"),
		)
	}

	ConfigInstance = cfg
	return nil
}
