package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/pantry-labs/gourmet-cli/internal/logger"
)

// TokenEnv is the environment variable holding the Telegram bot token.
// It overrides the file value so the token can stay out of the config.
const TokenEnv = "GOURMET_BOT_TOKEN"

// DefaultDatasetURL is where the recipe dataset is fetched from when no
// local copy exists.
const DefaultDatasetURL = "https://www.dropbox.com/scl/fi/n2qo6g8vuh8pa8wkkb0bh/recipes.csv?rlkey=1sq9rkpkhhcvkcpcwdmuw3pmt&st=hw2fgsq9&dl=1"

// Config is the full application configuration.
type Config struct {
	Telegram TelegramConfig `toml:"telegram"`
	Dataset  DatasetConfig  `toml:"dataset"`
	Sessions SessionsConfig `toml:"sessions"`
	Search   SearchConfig   `toml:"search"`
}

// TelegramConfig configures the Telegram transport.
type TelegramConfig struct {
	// Token is the bot API token. Prefer the GOURMET_BOT_TOKEN variable
	// over storing it here.
	Token string `toml:"token"`

	// MessageLimit caps outgoing message length in characters. Zero means
	// the Telegram maximum.
	MessageLimit int `toml:"message_limit"`

	// RatePerSecond throttles outgoing sends. Zero disables throttling.
	RatePerSecond float64 `toml:"rate_per_second"`
}

// DatasetConfig configures the recipe dataset source.
type DatasetConfig struct {
	// Path is the local CSV file. Defaults to recipes.csv in the config
	// directory.
	Path string `toml:"path"`

	// URL is where to download the dataset from when Path is missing.
	URL string `toml:"url"`

	// ChunkSize is the scan chunk size in rows. Zero means the default.
	ChunkSize int `toml:"chunk_size"`
}

// SessionsConfig configures conversation persistence.
type SessionsConfig struct {
	// Backend selects the session store: "sqlite" (default) or "memory".
	Backend string `toml:"backend"`

	// DataDir is where the sqlite backend keeps its database. Defaults to
	// the data directory under the config directory.
	DataDir string `toml:"data_dir"`
}

// SearchConfig tunes the scan behaviour.
type SearchConfig struct {
	// TimeoutSeconds bounds one search turn. Zero disables the bound.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Dir returns the gourmet config directory, creating it if needed.
// An empty argument resolves to ~/.gourmet.
func Dir(configDir string) (string, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".gourmet")
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", err
	}
	return configDir, nil
}

// Load reads config.toml from the given directory and applies defaults
// and environment overrides. A missing file is not an error; defaults
// apply.
func Load(configDir string) (*Config, error) {
	dir, err := Dir(configDir)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	path := filepath.Join(dir, "config.toml")
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		logger.Debug("No config file at %s, using defaults", path)
	case err != nil:
		return nil, err
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	cfg.applyDefaults(dir)
	cfg.applyEnv(dir)
	return cfg, nil
}

// Save writes the configuration back to config.toml with restricted
// permissions.
func (c *Config) Save(configDir string) error {
	dir, err := Dir(configDir)
	if err != nil {
		return err
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.toml"), data, 0600)
}

func (c *Config) applyDefaults(dir string) {
	if c.Dataset.Path == "" {
		c.Dataset.Path = filepath.Join(dir, "recipes.csv")
	}
	if c.Dataset.URL == "" {
		c.Dataset.URL = DefaultDatasetURL
	}
	if c.Sessions.Backend == "" {
		c.Sessions.Backend = "sqlite"
	}
	if c.Sessions.DataDir == "" {
		c.Sessions.DataDir = filepath.Join(dir, "data")
	}
}

// applyEnv layers environment overrides on top of the file values. A
// .env file in the config directory or the working directory is loaded
// first, so local runs can keep the token there.
func (c *Config) applyEnv(dir string) {
	for _, envFile := range []string{filepath.Join(dir, ".env"), ".env"} {
		if err := godotenv.Load(envFile); err == nil {
			logger.Debug("Loaded environment from %s", envFile)
		}
	}
	if token := os.Getenv(TokenEnv); token != "" {
		c.Telegram.Token = token
	}
}
