package config

import (
	"encoding/json"
	"os"

	"github.com/ksorokina/fitvault/internal/flagx"
	"github.com/ksorokina/fitvault/internal/timex"
)

// JsonConfig is the JSON shape of the configuration file. Durations
// accept both "15m"-style strings and integer nanoseconds via
// timex.Duration; values are copied into the runtime Config afterwards.
type JsonConfig struct {
	DatabaseDSN                  string         `json:"database_dsn"`
	AppSecret                    string         `json:"app_secret"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
}

// parseJson overlays values from the JSON file named by -c/-config, if
// any. A missing flag means no file is loaded; an unreadable or invalid
// file is a startup failure and panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.DatabaseDSN = c.DatabaseDSN
	config.AppSecret = c.AppSecret
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
}
