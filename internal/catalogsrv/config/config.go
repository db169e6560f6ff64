package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type DatabaseConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DBName   string `toml:"dbname"`
	SSLMode  string `toml:"sslmode"`
}

type StorageConfig struct {
	// Backend selects where unit documents live: "local" streams files from
	// LocalRoot, "gcs" issues signed URLs against Bucket.
	Backend      string `toml:"backend"`
	LocalRoot    string `toml:"local_root"`
	Bucket       string `toml:"bucket"`
	SignedURLTTL string `toml:"signed_url_ttl"`
}

type AuthConfig struct {
	TokenSigningKey string `toml:"token_signing_key"`
	TokenValidity   string `toml:"token_validity"`
}

type ConfigParam struct {
	ServerPort string         `toml:"server_port"`
	HandleCORS bool           `toml:"handle_cors"`
	Database   DatabaseConfig `toml:"database"`
	Storage    StorageConfig  `toml:"storage"`
	Auth       AuthConfig     `toml:"auth"`
}

var cfg *ConfigParam

func Config() *ConfigParam {
	return cfg
}

func LoadConfig(filename string) error {
	if filename == "" {
		cfg = defaultConfig()
		return nil
	}
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}
	var cp ConfigParam
	if _, err := toml.Decode(string(content), &cp); err != nil {
		return fmt.Errorf("error parsing config file: %v", err)
	}
	applyDefaults(&cp)
	cfg = &cp
	return nil
}

func defaultConfig() *ConfigParam {
	cp := &ConfigParam{
		ServerPort: "8195",
		HandleCORS: true,
	}
	applyDefaults(cp)
	return cp
}

func applyDefaults(cp *ConfigParam) {
	if cp.ServerPort == "" {
		cp.ServerPort = "8195"
	}
	if cp.Database.Host == "" {
		cp.Database.Host = "localhost"
	}
	if cp.Database.Port == 0 {
		cp.Database.Port = 5432
	}
	if cp.Database.DBName == "" {
		cp.Database.DBName = "edushelf"
	}
	if cp.Database.SSLMode == "" {
		cp.Database.SSLMode = "disable"
	}
	if cp.Storage.Backend == "" {
		cp.Storage.Backend = "local"
	}
	if cp.Storage.LocalRoot == "" {
		cp.Storage.LocalRoot = "./uploads"
	}
	if cp.Storage.SignedURLTTL == "" {
		cp.Storage.SignedURLTTL = "5m"
	}
	if cp.Auth.TokenValidity == "" {
		cp.Auth.TokenValidity = "24h"
	}
}

// Dsn returns the keyword/value connection string for the catalog database.
func (d DatabaseConfig) Dsn() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// SignedURLValidity parses the configured signed URL TTL, falling back to
// five minutes on any parse failure. Expiry is short deliberately: the URL
// is handed to the client for one immediate render.
func (s StorageConfig) SignedURLValidity() time.Duration {
	d, err := time.ParseDuration(s.SignedURLTTL)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// TokenDuration parses the configured session token validity.
func (a AuthConfig) TokenDuration() (time.Duration, error) {
	return time.ParseDuration(a.TokenValidity)
}

func init() {
	if err := LoadConfig(""); err != nil {
		panic(err)
	}
}
