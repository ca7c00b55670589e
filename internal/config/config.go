package config

import (
	"fmt"
	"net/url"

	"github.com/spf13/viper"
)

type Configuration struct {
	// Name of the instance.
	Name string
	// Domain is the host this instance is reachable at.
	Domain string
	Https  bool
	// Url is the instance's base URL, derived from Domain and Https.
	Url *url.URL
	// DbUrl is the sqlite connection string.
	DbUrl string
	// MigrationsFolder holds the schema migration files.
	MigrationsFolder string
	// QueueWorkers is the number of background job workers.
	QueueWorkers int
	// RsaKeySize specifies the size of the RSA key used to sign outgoing
	// requests.
	RsaKeySize int
	Port       uint16
	// Debug, if true, enables debug-level logging.
	Debug bool
}

func ReadConfig() (Configuration, error) {
	viper.SetConfigName("aster")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/aster")
	viper.SetEnvPrefix("aster")
	viper.AutomaticEnv()

	viper.SetDefault("https", true)
	viper.SetDefault("dburl", "aster.db?_journal=WAL&_timeout=5000")
	viper.SetDefault("migrationsfolder", "migrations")
	viper.SetDefault("queueworkers", 2)
	viper.SetDefault("rsakeysize", 2048)
	viper.SetDefault("port", 8080)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Configuration{}, err
		}
	}

	var cfg Configuration
	if err := viper.Unmarshal(&cfg); err != nil {
		return Configuration{}, err
	}

	if cfg.Domain == "" {
		return Configuration{}, fmt.Errorf("config: domain is required")
	}

	scheme := "https"
	if !cfg.Https {
		scheme = "http"
	}
	u, err := url.Parse(scheme + "://" + cfg.Domain)
	if err != nil {
		return Configuration{}, fmt.Errorf("config: invalid domain: %w", err)
	}
	cfg.Url = u

	return cfg, nil
}
