package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "GUARD"

// Sinks holds the optional output destinations shared by commands.
type Sinks struct {
	Out        string
	PGDSN      string
	NATSURL    string
	NATSPrefix string
}

// load merges .env, config file, environment variables, and flags.
func load(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-level", "info")
	v.SetDefault("nats-prefix", "guard")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

func loadSinks(v *viper.Viper) Sinks {
	return Sinks{
		Out:        v.GetString("out"),
		PGDSN:      v.GetString("pg-dsn"),
		NATSURL:    v.GetString("nats-url"),
		NATSPrefix: v.GetString("nats-prefix"),
	}
}

// optionalUint8 returns nil when key was never set.
func optionalUint8(v *viper.Viper, key string) (*uint8, error) {
	if !v.IsSet(key) {
		return nil, nil
	}
	n := v.GetInt(key)
	if n < 0 || n > 255 {
		return nil, fmt.Errorf("%s: %d is not a uint8", key, n)
	}
	out := uint8(n)
	return &out, nil
}

func optionalInt(v *viper.Viper, key string) *int {
	if !v.IsSet(key) {
		return nil
	}
	n := v.GetInt(key)
	return &n
}
