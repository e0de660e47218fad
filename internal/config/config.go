package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	VAPID    VAPIDConfig    `mapstructure:"vapid"`
	Reminder ReminderConfig `mapstructure:"reminder"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// JWTConfig defines JWT specific configuration.
// Expiration is parsed directly from a duration string ("1h", "60m").
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// VAPIDConfig holds the web-push signing credential. The key pair is
// process-wide configuration state with no lifecycle beyond startup; the
// push dispatcher initializes from it exactly once.
type VAPIDConfig struct {
	Subscriber string `mapstructure:"subscriber"` // "mailto:" contact for the push gateway
	PublicKey  string `mapstructure:"public_key"`
	PrivateKey string `mapstructure:"private_key"`
}

// ReminderConfig controls the daily booking-reminder job.
type ReminderConfig struct {
	Hour     int    `mapstructure:"hour"`     // Local hour (0-23) the job fires at
	Timezone string `mapstructure:"timezone"` // IANA name, e.g. "Europe/Sarajevo"
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// --- Environment Variable Handling ---
	viper.AutomaticEnv()
	// Use replacer for nested keys e.g., server.address -> SERVER_ADDRESS,
	// vapid.private_key -> VAPID_PRIVATE_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	// --- Set default values ---
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "gym_app")
	viper.SetDefault("jwt.expiration", "24h")
	viper.SetDefault("reminder.hour", 8)
	viper.SetDefault("reminder.timezone", "Europe/Sarajevo")

	// --- Read Config File ---
	err = viper.ReadInConfig()
	// If the config file is missing we continue on env vars + defaults.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	// --- Unmarshal Config ---
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}
