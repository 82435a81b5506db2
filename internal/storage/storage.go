package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rhystmorgan/phonebook/internal/models"
)

const (
	appDir          = ".pbterm"
	addressBookFile = "addressbook.json"
	configFile      = "config.json"
	avatarsDir      = "avatars"
)

var ErrPassphraseRequired = errors.New("address book is encrypted; set PBTERM_ADDRESSBOOK_PASSPHRASE")

type Storage struct {
	dataDir string
}

// Config holds UI preferences that survive restarts.
type Config struct {
	Theme         string   `json:"theme"`
	SearchHistory []string `json:"search_history"`
}

// addressBookDocument is the on-disk address book. Exactly one of Entries or
// Sealed is set.
type addressBookDocument struct {
	Version int                  `json:"version"`
	Entries []models.DeviceEntry `json:"entries,omitempty"`
	Sealed  *SealedData          `json:"sealed,omitempty"`
}

func NewStorage() (*Storage, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	return NewStorageAt(filepath.Join(homeDir, appDir))
}

func NewStorageAt(dataDir string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Join(dataDir, avatarsDir), 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &Storage{dataDir: dataDir}, nil
}

func (s *Storage) DataDir() string {
	return s.dataDir
}

func (s *Storage) AvatarsDir() string {
	return filepath.Join(s.dataDir, avatarsDir)
}

func (s *Storage) SaveConfig(config *Config) error {
	return s.writeJSON(configFile, config)
}

func (s *Storage) LoadConfig() (*Config, error) {
	filePath := filepath.Join(s.dataDir, configFile)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		defaultConfig := &Config{
			Theme:         "catppuccin",
			SearchHistory: []string{},
		}
		return defaultConfig, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// SaveAddressBook writes entries, sealed with passphrase when it is not empty.
func (s *Storage) SaveAddressBook(entries []models.DeviceEntry, passphrase string) error {
	doc := addressBookDocument{Version: 1}

	if passphrase == "" {
		doc.Entries = entries
		if doc.Entries == nil {
			doc.Entries = []models.DeviceEntry{}
		}
	} else {
		plain, err := json.Marshal(entries)
		if err != nil {
			return fmt.Errorf("failed to marshal address book: %w", err)
		}
		sealed, err := Seal(plain, passphrase)
		if err != nil {
			return fmt.Errorf("failed to encrypt address book: %w", err)
		}
		doc.Sealed = sealed
	}

	return s.writeJSON(addressBookFile, doc)
}

// LoadAddressBook returns an empty book when no file exists yet.
func (s *Storage) LoadAddressBook(passphrase string) ([]models.DeviceEntry, error) {
	filePath := filepath.Join(s.dataDir, addressBookFile)

	data, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return []models.DeviceEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read address book: %w", err)
	}

	var doc addressBookDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal address book: %w", err)
	}

	if doc.Sealed == nil {
		if doc.Entries == nil {
			return []models.DeviceEntry{}, nil
		}
		return doc.Entries, nil
	}

	if passphrase == "" {
		return nil, ErrPassphraseRequired
	}

	plain, err := Unseal(doc.Sealed, passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt address book: %w", err)
	}

	var entries []models.DeviceEntry
	if err := json.Unmarshal(plain, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal address book: %w", err)
	}
	if entries == nil {
		entries = []models.DeviceEntry{}
	}
	return entries, nil
}

// WriteAvatar stages an encoded profile image under avatars/ and returns its
// path. ext is the file extension without the dot.
func (s *Storage) WriteAvatar(data []byte, ext string) (string, error) {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = "jpg"
	}

	name := fmt.Sprintf("avatar_%d.%s", time.Now().UnixNano(), ext)
	filePath := filepath.Join(s.AvatarsDir(), name)
	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write avatar: %w", err)
	}

	return filePath, nil
}

// PruneAvatars removes staged images older than maxAge and reports how many
// were deleted.
func (s *Storage) PruneAvatars(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.AvatarsDir())
	if err != nil {
		return 0, fmt.Errorf("failed to list avatars: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "avatar_") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.AvatarsDir(), entry.Name())); err == nil {
			removed++
		}
	}

	return removed, nil
}

func (s *Storage) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	filePath := filepath.Join(s.dataDir, name)
	tmpPath := filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}

	return nil
}
