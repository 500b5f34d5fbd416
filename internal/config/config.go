// Package config loads service settings from an optional TOML file with
// environment-variable overrides for credentials and deployment knobs.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Port         string `toml:"port"`
	CountryCode  string `toml:"country_code"`
	DatabasePath string `toml:"database_path"`
	OutputDir    string `toml:"output_dir"`

	Tidal   Credentials `toml:"tidal"`
	Spotify Credentials `toml:"spotify"`
}

type Credentials struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

func Default() Config {
	return Config{
		Port:         "8080",
		CountryCode:  "FR",
		DatabasePath: "./data/registry.db",
		OutputDir:    "./out",
	}
}

// Load reads path if it exists (a missing file is fine, defaults apply)
// and then applies environment overrides. Credentials normally come from
// the environment rather than the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}

	override(&cfg.Port, "PORT")
	override(&cfg.CountryCode, "COUNTRY_CODE")
	override(&cfg.DatabasePath, "DATABASE_PATH")
	override(&cfg.OutputDir, "OUTPUT_DIR")
	override(&cfg.Tidal.ClientID, "TIDAL_CLIENT_ID")
	override(&cfg.Tidal.ClientSecret, "TIDAL_CLIENT_SECRET")
	override(&cfg.Spotify.ClientID, "SPOTIFY_ID")
	override(&cfg.Spotify.ClientSecret, "SPOTIFY_SECRET")

	return cfg, nil
}

func override(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
