// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-notevault.
//
// go-notevault is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package config loads the server configuration from a YAML file with
// environment variable overrides.
package config

import (
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"
	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-notevault/pkg/passkey"
)

// Config represents the complete server configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Passkey PasskeyConfig `yaml:"passkey"`
	Session SessionConfig `yaml:"session"`
	Storage StorageConfig `yaml:"storage"`
}

// ServerConfig contains server-level settings
type ServerConfig struct {
	Port int `yaml:"port"`

	// InsecureCookies drops the Secure flag from issued cookies for
	// plain-HTTP development. Never enable in production.
	InsecureCookies bool `yaml:"insecure_cookies"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// PasskeyConfig contains the WebAuthn relying party settings
type PasskeyConfig struct {
	RPID                string   `yaml:"rp_id"`
	RPDisplayName       string   `yaml:"rp_display_name"`
	RPOrigins           []string `yaml:"rp_origins"`
	UserVerification    string   `yaml:"user_verification"`
	ChallengeTTLSeconds int      `yaml:"challenge_ttl_seconds"`
	SessionTTLMinutes   int      `yaml:"session_ttl_minutes"`
}

// SessionConfig controls the sealing key for challenges and session
// tokens. Exactly one of Key (32 bytes, hex) or Passphrase (with Salt)
// must be set; a passphrase is stretched with argon2id.
type SessionConfig struct {
	Key        string `yaml:"key"`
	Passphrase string `yaml:"passphrase"`
	Salt       string `yaml:"salt"`
}

// StorageConfig controls the persistence backend
type StorageConfig struct {
	Backend string `yaml:"backend"` // sqlite, memory
	Path    string `yaml:"path"`
}

// Load reads configuration from a YAML file and applies environment
// variable overrides.
func Load(path string) (*Config, error) {
	// #nosec G304 - Config file path is provided by admin/user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(&cfg)
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) {
	if port := os.Getenv("NOTEVAULT_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			log.Printf("Warning: invalid NOTEVAULT_PORT value %q, using default %d: %v",
				port, cfg.Server.Port, err)
		} else if p < 1 || p > 65535 {
			log.Printf("Warning: invalid NOTEVAULT_PORT value %q (out of range 1-65535), using default %d",
				port, cfg.Server.Port)
		} else {
			cfg.Server.Port = p
		}
	}

	if level := os.Getenv("NOTEVAULT_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv("NOTEVAULT_LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}

	if rpID := os.Getenv("NOTEVAULT_RP_ID"); rpID != "" {
		cfg.Passkey.RPID = rpID
	}
	if origins := os.Getenv("NOTEVAULT_RP_ORIGINS"); origins != "" {
		cfg.Passkey.RPOrigins = strings.Split(origins, ",")
	}

	if key := os.Getenv("NOTEVAULT_SESSION_KEY"); key != "" {
		cfg.Session.Key = key
	}
	if passphrase := os.Getenv("NOTEVAULT_SESSION_PASSPHRASE"); passphrase != "" {
		cfg.Session.Passphrase = passphrase
	}

	if path := os.Getenv("NOTEVAULT_DATA_PATH"); path != "" {
		cfg.Storage.Path = path
	}
}

// SetDefaults fills in defaults for unset fields.
func (c *Config) SetDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8443
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Passkey.RPDisplayName == "" {
		c.Passkey.RPDisplayName = c.Passkey.RPID
	}
	if c.Passkey.UserVerification == "" {
		c.Passkey.UserVerification = "preferred"
	}
	if c.Passkey.ChallengeTTLSeconds == 0 {
		c.Passkey.ChallengeTTLSeconds = 60
	}
	if c.Passkey.SessionTTLMinutes == 0 {
		c.Passkey.SessionTTLMinutes = 30
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "sqlite"
	}
	if c.Storage.Backend == "sqlite" && c.Storage.Path == "" {
		c.Storage.Path = "notevault.db"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validFormats := map[string]bool{
		"json": true, "text": true,
	}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	if c.Passkey.RPID == "" {
		return fmt.Errorf("passkey rp_id must be specified")
	}
	if len(c.Passkey.RPOrigins) == 0 {
		return fmt.Errorf("passkey rp_origins must be specified")
	}

	switch c.Storage.Backend {
	case "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage path must be specified for sqlite backend")
		}
	case "memory":
	default:
		return fmt.Errorf("invalid storage backend: %s (must be sqlite or memory)", c.Storage.Backend)
	}

	if _, err := c.SessionKey(); err != nil {
		return err
	}

	return nil
}

// SessionKey derives the 32-byte sealing key from the session settings.
func (c *Config) SessionKey() ([]byte, error) {
	if c.Session.Key != "" && c.Session.Passphrase != "" {
		return nil, fmt.Errorf("session key and passphrase are mutually exclusive")
	}

	if c.Session.Key != "" {
		key, err := hex.DecodeString(c.Session.Key)
		if err != nil {
			return nil, fmt.Errorf("session key must be hex encoded: %w", err)
		}
		if len(key) != passkey.KeySize {
			return nil, fmt.Errorf("session key must be %d bytes, got %d", passkey.KeySize, len(key))
		}
		return key, nil
	}

	if c.Session.Passphrase != "" {
		if c.Session.Salt == "" {
			return nil, fmt.Errorf("session salt is required with a passphrase")
		}
		key := argon2.IDKey([]byte(c.Session.Passphrase), []byte(c.Session.Salt), 1, 64*1024, 4, passkey.KeySize)
		return key, nil
	}

	return nil, fmt.Errorf("session key or passphrase must be specified")
}

// ToPasskeyConfig converts the YAML settings into the passkey service
// configuration.
func (c *Config) ToPasskeyConfig() *passkey.Config {
	return &passkey.Config{
		RPID:             c.Passkey.RPID,
		RPDisplayName:    c.Passkey.RPDisplayName,
		RPOrigins:        c.Passkey.RPOrigins,
		UserVerification: c.Passkey.UserVerification,
		ChallengeTTL:     time.Duration(c.Passkey.ChallengeTTLSeconds) * time.Second,
		SessionTTL:       time.Duration(c.Passkey.SessionTTLMinutes) * time.Minute,
	}
}
