// Package config provides types for handling configuration parameters.
package config

import (
	"flag"

	"github.com/caarlos0/env/v6"
)

// Config handles server-related constants and parameters.
type Config struct {
	ServerConfig  *ServerConfig
	StorageConfig *StorageConfig
	SecretConfig  *SecretConfig
	SyncConfig    *SyncConfig
	TriggerConfig *TriggerConfig
}

// ServerConfig defines default server-related parameters and overwrites them with environment variables.
type ServerConfig struct {
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:":8080"`
	BaseURL       string `env:"BASE_URL" envDefault:"http://localhost:8080"`
}

// StorageConfig retrieves storage-related parameters from environment.
// DatabaseDSN selects the backend: a postgres DSN activates the PSQL
// storage, a sqlite/libsql DSN activates the SQLite storage, an empty
// value activates the in-memory storage.
type StorageConfig struct {
	DatabaseDSN string `env:"DATABASE_DSN"`
}

// SecretConfig holds the admin credential and the session signing key.
// AdminPasswordHash, when set, takes precedence over AdminPassword and is
// compared with bcrypt.
type SecretConfig struct {
	AdminPassword     string `env:"ADMIN_PASSWORD" envDefault:"admin123"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`
	JWTKey            string `env:"JWT_KEY" envDefault:"jwtsecretkey"`
	TokenTTLHours     int    `env:"TOKEN_TTL_HOURS" envDefault:"24"`
}

// SyncConfig retrieves manifest reconciliation parameters from environment.
type SyncConfig struct {
	ManifestPath string `env:"MANIFEST_PATH" envDefault:"redirects.json"`
	FallbackPath string `env:"FALLBACK_MANIFEST_PATH"`
}

// TriggerConfig retrieves automation trigger parameters from environment.
// DispatchURL points at the CI repository_dispatch endpoint, DeployHookURL
// at an optional deploy hook; either may be empty, disabling that call.
type TriggerConfig struct {
	DispatchURL    string `env:"SYNC_DISPATCH_URL"`
	DispatchToken  string `env:"SYNC_DISPATCH_TOKEN"`
	DeployHookURL  string `env:"DEPLOY_HOOK_URL"`
	TimeoutSeconds int    `env:"TRIGGER_TIMEOUT_SECONDS" envDefault:"5"`
}

// NewServerConfig sets up a server configuration.
func NewServerConfig() (*ServerConfig, error) {
	cfg := ServerConfig{}
	err := env.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewStorageConfig sets up a storage configuration.
func NewStorageConfig() (*StorageConfig, error) {
	cfg := StorageConfig{}
	err := env.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewSecretConfig sets up a secret configuration.
func NewSecretConfig() (*SecretConfig, error) {
	cfg := SecretConfig{}
	err := env.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewSyncConfig sets up a sync configuration.
func NewSyncConfig() (*SyncConfig, error) {
	cfg := SyncConfig{}
	err := env.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewTriggerConfig sets up a trigger configuration.
func NewTriggerConfig() (*TriggerConfig, error) {
	cfg := TriggerConfig{}
	err := env.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewDefaultConfiguration sets up a total configuration.
func NewDefaultConfiguration() (*Config, error) {
	serverCfg, err := NewServerConfig()
	if err != nil {
		return nil, err
	}
	storageCfg, err := NewStorageConfig()
	if err != nil {
		return nil, err
	}
	secretCfg, err := NewSecretConfig()
	if err != nil {
		return nil, err
	}
	syncCfg, err := NewSyncConfig()
	if err != nil {
		return nil, err
	}
	triggerCfg, err := NewTriggerConfig()
	if err != nil {
		return nil, err
	}
	return &Config{
		ServerConfig:  serverCfg,
		StorageConfig: storageCfg,
		SecretConfig:  secretCfg,
		SyncConfig:    syncCfg,
		TriggerConfig: triggerCfg,
	}, nil
}

// ParseFlags parses command line arguments and stores them.
func (c *Config) ParseFlags() {
	flag.StringVar(&c.ServerConfig.ServerAddress, "a", c.ServerConfig.ServerAddress, "Server address")
	flag.StringVar(&c.ServerConfig.BaseURL, "b", c.ServerConfig.BaseURL, "Base url")
	flag.StringVar(&c.StorageConfig.DatabaseDSN, "d", c.StorageConfig.DatabaseDSN, "Database DSN")
	flag.StringVar(&c.SyncConfig.ManifestPath, "m", c.SyncConfig.ManifestPath, "Manifest path")
	flag.Parse()
}
