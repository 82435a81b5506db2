package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"rhystmorgan/phonebook/internal/api"
)

const (
	DefaultCropSize    = 512
	DefaultCropQuality = 70
	MinCropSize        = 64
	MaxCropSize        = 2048
)

type AppConfig struct {
	APIURL      string        `json:"api_url"`
	APIKey      string        `json:"-"`
	Timeout     time.Duration `json:"timeout"`
	DataDir     string        `json:"data_dir"`
	DebugLog    bool          `json:"debug"`
	MetricsAddr string        `json:"metrics_addr"`

	// Address book grants. Both default to denied.
	ContactsRead  bool `json:"contacts_read"`
	ContactsWrite bool `json:"contacts_write"`

	AddressBookPassphrase string `json:"-"`

	CropSize    int `json:"crop_size"`
	CropQuality int `json:"crop_quality"`
}

// Load reads the PBTERM_* environment and validates everything the TUI needs.
func Load() (*AppConfig, error) {
	config := fromEnv()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadLocal is Load for commands that never reach the API, so the key is
// optional.
func LoadLocal() (*AppConfig, error) {
	config := fromEnv()
	if err := config.validateLocal(); err != nil {
		return nil, err
	}
	return config, nil
}

func fromEnv() *AppConfig {
	return &AppConfig{
		APIURL:                getEnvOrDefault("PBTERM_API_URL", api.DefaultBaseURL),
		APIKey:                strings.TrimSpace(os.Getenv("PBTERM_API_KEY")),
		Timeout:               parseDurationOrDefault("PBTERM_TIMEOUT", api.DefaultTimeout),
		DataDir:               getEnvOrDefault("PBTERM_DATA_DIR", ""),
		DebugLog:              IsDebugEnabled(),
		MetricsAddr:           os.Getenv("PBTERM_METRICS_ADDR"),
		ContactsRead:          parseBoolOrDefault("PBTERM_CONTACTS_READ", false),
		ContactsWrite:         parseBoolOrDefault("PBTERM_CONTACTS_WRITE", false),
		AddressBookPassphrase: os.Getenv("PBTERM_ADDRESSBOOK_PASSPHRASE"),
		CropSize:              parseIntOrDefault("PBTERM_CROP_SIZE", DefaultCropSize),
		CropQuality:           parseIntOrDefault("PBTERM_CROP_QUALITY", DefaultCropQuality),
	}
}

func (c *AppConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("PBTERM_API_KEY is required")
	}

	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API URL: %s (must be an absolute http(s) URL)", c.APIURL)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got: %v", c.Timeout)
	}

	return c.validateLocal()
}

func (c *AppConfig) validateLocal() error {
	if c.CropSize < MinCropSize || c.CropSize > MaxCropSize {
		return fmt.Errorf("crop size must be between %d and %d, got: %d", MinCropSize, MaxCropSize, c.CropSize)
	}

	return nil
}

func (c *AppConfig) ToAPIConfig() api.Config {
	return api.Config{
		BaseURL: c.APIURL,
		APIKey:  c.APIKey,
		Timeout: c.Timeout,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		APIURL:      api.DefaultBaseURL,
		Timeout:     api.DefaultTimeout,
		CropSize:    DefaultCropSize,
		CropQuality: DefaultCropQuality,
	}
}

func IsDebugEnabled() bool {
	return os.Getenv("PBTERM_DEBUG") == "true" || os.Getenv("PBTERM_DEBUG") == "1"
}
