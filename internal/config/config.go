// Package config loads kintree settings from a TOML file.
//
// The file is optional. Missing keys keep their defaults, unknown keys are
// rejected so typos surface early:
//
//	log_level = "debug"
//	tree = "smith"
//
//	[storage]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//	allowed_origins = ["http://localhost:3000"]
//	session_ttl = "12h"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/person"
	"github.com/matzehuels/kintree/pkg/storage"
)

const appName = "kintree"

// Config is the full configuration file.
type Config struct {
	LogLevel string  `toml:"log_level"`
	Tree     string  `toml:"tree"`
	Storage  Storage `toml:"storage"`
	Server   Server  `toml:"server"`
}

// Storage selects the dataset backend.
type Storage struct {
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir"`
	RedisAddr       string `toml:"redis_addr"`
	RedisPassword   string `toml:"redis_password"`
	RedisDB         int    `toml:"redis_db"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Server configures the HTTP API.
type Server struct {
	Addr           string        `toml:"addr"`
	AllowedOrigins []string      `toml:"allowed_origins"`
	SessionTTL     time.Duration `toml:"session_ttl"`
	// Dataset is loaded into the shared store at startup when set.
	Dataset string `toml:"dataset"`
}

var backends = []string{storage.BackendFile, storage.BackendMemory, storage.BackendRedis, storage.BackendMongo}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		LogLevel: "info",
		Tree:     person.TreeAll,
		Storage: Storage{
			Backend: storage.BackendFile,
		},
		Server: Server{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
			SessionTTL:     24 * time.Hour,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/kintree/config.toml, falling back to
// ~/.config/kintree/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads path over the defaults. An empty path means [DefaultPath]; a
// missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that decoding alone cannot.
func (c Config) Validate() error {
	if !slices.Contains(backends, c.Storage.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown storage backend %q (want one of %s)", c.Storage.Backend, strings.Join(backends, ", "))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "log_level")
	}
	if err := errors.ValidateTreeKey(c.Tree); err != nil {
		return err
	}
	if c.Server.SessionTTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "server.session_ttl must not be negative")
	}
	if c.Server.Dataset != "" {
		if err := errors.ValidateDatasetName(c.Server.Dataset); err != nil {
			return err
		}
	}
	return nil
}

// Level returns the parsed log level, defaulting to info.
func (c Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// StorageConfig converts the storage section for [storage.Open].
func (c Config) StorageConfig() storage.Config {
	return storage.Config{
		Backend:         c.Storage.Backend,
		Dir:             c.Storage.Dir,
		RedisAddr:       c.Storage.RedisAddr,
		RedisPassword:   c.Storage.RedisPassword,
		RedisDB:         c.Storage.RedisDB,
		MongoURI:        c.Storage.MongoURI,
		MongoDatabase:   c.Storage.MongoDatabase,
		MongoCollection: c.Storage.MongoCollection,
	}
}

// String renders the effective configuration as TOML. Secrets are masked.
func (c Config) String() string {
	if c.Storage.RedisPassword != "" {
		c.Storage.RedisPassword = "****"
	}
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("%+v", c)
	}
	return b.String()
}
