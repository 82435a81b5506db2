package config

import (
	"testing"
	"time"

	"rhystmorgan/phonebook/internal/api"
)

var envKeys = []string{
	"PBTERM_API_URL",
	"PBTERM_API_KEY",
	"PBTERM_TIMEOUT",
	"PBTERM_DATA_DIR",
	"PBTERM_DEBUG",
	"PBTERM_METRICS_ADDR",
	"PBTERM_CONTACTS_READ",
	"PBTERM_CONTACTS_WRITE",
	"PBTERM_ADDRESSBOOK_PASSPHRASE",
	"PBTERM_CROP_SIZE",
	"PBTERM_CROP_QUALITY",
}

func clearEnv(t *testing.T) {
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("PBTERM_API_KEY", "secret")

	config, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.APIURL != api.DefaultBaseURL {
		t.Errorf("Expected default API URL '%s', got '%s'", api.DefaultBaseURL, config.APIURL)
	}

	if config.Timeout != 20*time.Second {
		t.Errorf("Expected default timeout 20s, got %v", config.Timeout)
	}

	if config.ContactsRead || config.ContactsWrite {
		t.Error("Expected address book grants to default to denied")
	}

	if config.CropSize != DefaultCropSize {
		t.Errorf("Expected default crop size %d, got %d", DefaultCropSize, config.CropSize)
	}

	if config.CropQuality != DefaultCropQuality {
		t.Errorf("Expected default crop quality %d, got %d", DefaultCropQuality, config.CropQuality)
	}
}

func TestLoadWithEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PBTERM_API_KEY", "secret")
	t.Setenv("PBTERM_API_URL", "http://localhost:11235/")
	t.Setenv("PBTERM_TIMEOUT", "5s")
	t.Setenv("PBTERM_CONTACTS_READ", "true")
	t.Setenv("PBTERM_CONTACTS_WRITE", "1")
	t.Setenv("PBTERM_CROP_SIZE", "256")
	t.Setenv("PBTERM_CROP_QUALITY", "90")
	t.Setenv("PBTERM_METRICS_ADDR", "127.0.0.1:9100")

	config, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.APIURL != "http://localhost:11235/" {
		t.Errorf("Expected API URL 'http://localhost:11235/', got '%s'", config.APIURL)
	}
	if config.Timeout != 5*time.Second {
		t.Errorf("Expected timeout 5s, got %v", config.Timeout)
	}
	if !config.ContactsRead || !config.ContactsWrite {
		t.Error("Expected both address book grants")
	}
	if config.CropSize != 256 || config.CropQuality != 90 {
		t.Errorf("Expected crop 256/90, got %d/%d", config.CropSize, config.CropQuality)
	}
	if config.MetricsAddr != "127.0.0.1:9100" {
		t.Errorf("Expected metrics addr, got '%s'", config.MetricsAddr)
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	clearEnv(t)

	if _, err := Load(); err == nil {
		t.Error("Expected an error without PBTERM_API_KEY")
	}
}

func TestValidate(t *testing.T) {
	valid := func() AppConfig {
		return AppConfig{
			APIURL:   "https://contacts.example.com/",
			APIKey:   "secret",
			Timeout:  time.Second,
			CropSize: DefaultCropSize,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid config", func(c *AppConfig) {}, false},
		{"missing key", func(c *AppConfig) { c.APIKey = "" }, true},
		{"relative URL", func(c *AppConfig) { c.APIURL = "/api" }, true},
		{"unsupported scheme", func(c *AppConfig) { c.APIURL = "ftp://example.com" }, true},
		{"zero timeout", func(c *AppConfig) { c.Timeout = 0 }, true},
		{"tiny crop", func(c *AppConfig) { c.CropSize = 8 }, true},
		{"huge crop", func(c *AppConfig) { c.CropSize = 10000 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.mutate(&config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestToAPIConfig(t *testing.T) {
	config := AppConfig{APIURL: "http://x/", APIKey: "k", Timeout: 3 * time.Second}
	apiConfig := config.ToAPIConfig()

	if apiConfig.BaseURL != "http://x/" || apiConfig.APIKey != "k" || apiConfig.Timeout != 3*time.Second {
		t.Errorf("Unexpected api config %+v", apiConfig)
	}
}

func TestIsDebugEnabled(t *testing.T) {
	for value, expected := range map[string]bool{"": false, "true": true, "1": true, "false": false} {
		t.Setenv("PBTERM_DEBUG", value)
		if IsDebugEnabled() != expected {
			t.Errorf("PBTERM_DEBUG=%q: expected %v", value, expected)
		}
	}
}

func TestParseHelpers(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	if result := parseIntOrDefault("TEST_INT", 10); result != 42 {
		t.Errorf("Expected 42, got %d", result)
	}
	if result := parseIntOrDefault("NONEXISTENT_INT", 10); result != 10 {
		t.Errorf("Expected default 10, got %d", result)
	}

	t.Setenv("TEST_BOOL", "not-a-bool")
	if parseBoolOrDefault("TEST_BOOL", true) != true {
		t.Error("Expected default for an unparsable bool")
	}

	t.Setenv("TEST_DURATION", "90s")
	if result := parseDurationOrDefault("TEST_DURATION", time.Second); result != 90*time.Second {
		t.Errorf("Expected 90s, got %v", result)
	}
}

func TestLoadLocalWithoutAPIKey(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadLocal()
	if err != nil {
		t.Fatalf("Expected no error without an API key, got %v", err)
	}
	if cfg.CropSize != DefaultCropSize {
		t.Errorf("Expected default crop size %d, got %d", DefaultCropSize, cfg.CropSize)
	}

	t.Setenv("PBTERM_CROP_SIZE", "8")
	if _, err := LoadLocal(); err == nil {
		t.Error("Expected an out of range crop size to fail")
	}
}
