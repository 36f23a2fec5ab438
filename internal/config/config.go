// Package config reads runtime settings from the environment.
package config

import "github.com/kelseyhightower/envconfig"

type Config struct {
	API   API
	Fetch Fetch
}

type API struct {
	BaseURL        string `envconfig:"API_BASE_URL"`
	TimeoutSeconds int    `envconfig:"API_TIMEOUT_SECONDS" default:"15"`
}

type Fetch struct {
	HistoryConcurrency int `envconfig:"HISTORY_CONCURRENCY" default:"14"`
	LogConcurrency     int `envconfig:"LOG_CONCURRENCY" default:"12"`
	ItemsTTLMinutes    int `envconfig:"ITEMS_TTL_MINUTES" default:"720"`
}

// New reads SHOWINSIGHTS_-prefixed environment variables, applying
// defaults for anything unset.
func New() (*Config, error) {
	var c Config
	if err := envconfig.Process("showinsights", &c); err != nil {
		return nil, err
	}
	return &c, nil
}
