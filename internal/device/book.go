package device

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"rhystmorgan/phonebook/internal/metrics"
	"rhystmorgan/phonebook/internal/models"
)

// Store persists the address book. storage.Storage satisfies it.
type Store interface {
	LoadAddressBook(passphrase string) ([]models.DeviceEntry, error)
	SaveAddressBook(entries []models.DeviceEntry, passphrase string) error
	WriteAvatar(data []byte, ext string) (string, error)
}

// Book is a Provider over a JSON address book file, optionally sealed with a
// passphrase.
type Book struct {
	store      Store
	passphrase string
	logger     *slog.Logger
	metrics    *metrics.Metrics

	permMu sync.RWMutex
	perms  Permissions

	mu    sync.Mutex
	scans singleflight.Group
}

type Option func(*Book)

func WithLogger(logger *slog.Logger) Option {
	return func(b *Book) {
		b.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Book) {
		b.metrics = m
	}
}

func WithPassphrase(passphrase string) Option {
	return func(b *Book) {
		b.passphrase = passphrase
	}
}

func NewBook(store Store, perms Permissions, opts ...Option) *Book {
	b := &Book{
		store: store,
		perms: perms,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return b
}

func (b *Book) HasReadAccess() bool {
	b.permMu.RLock()
	defer b.permMu.RUnlock()
	return b.perms.Read
}

func (b *Book) HasWriteAccess() bool {
	b.permMu.RLock()
	defer b.permMu.RUnlock()
	return b.perms.Write
}

func (b *Book) Permissions() Permissions {
	b.permMu.RLock()
	defer b.permMu.RUnlock()
	return b.perms
}

// SetPermissions grants or revokes access at runtime.
func (b *Book) SetPermissions(perms Permissions) {
	b.permMu.Lock()
	defer b.permMu.Unlock()
	b.perms = perms
}

func (b *Book) FindByPhone(ctx context.Context, phone string) bool {
	if !b.HasReadAccess() || models.NormalizePhone(phone) == "" {
		return false
	}

	entries, err := b.load()
	if err != nil {
		b.logger.Warn("address book lookup failed", "err", err)
		return false
	}

	for _, e := range entries {
		if ctx.Err() != nil {
			return false
		}
		if e.HasPhone(phone) {
			return true
		}
	}
	return false
}

// ReadAllNumbers coalesces concurrent callers onto a single scan.
func (b *Book) ReadAllNumbers(ctx context.Context) ([]string, error) {
	v, err, _ := b.scans.Do("scan", func() (any, error) {
		return b.scan(ctx)
	})
	numbers, _ := v.([]string)
	return numbers, err
}

func (b *Book) scan(ctx context.Context) ([]string, error) {
	numbers := []string{}

	if !b.HasReadAccess() {
		b.metrics.RecordScan(metrics.ScanDenied, 0)
		return numbers, fmt.Errorf("%w: read access not granted", ErrScanAborted)
	}

	entries, err := b.load()
	if err != nil {
		b.metrics.RecordScan(metrics.ScanPartial, 0)
		return numbers, fmt.Errorf("%w: %v", ErrScanAborted, err)
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			b.metrics.RecordScan(metrics.ScanPartial, len(numbers))
			return numbers, fmt.Errorf("%w: %v", ErrScanAborted, err)
		}
		if !b.HasReadAccess() {
			b.metrics.RecordScan(metrics.ScanDenied, len(numbers))
			return numbers, fmt.Errorf("%w: read access revoked", ErrScanAborted)
		}
		for _, p := range e.Phones {
			if strings.TrimSpace(p) != "" {
				numbers = append(numbers, p)
			}
		}
	}

	b.metrics.RecordScan(metrics.ScanComplete, len(numbers))
	b.logger.Debug("address book scanned", "entries", len(entries), "numbers", len(numbers))
	return numbers, nil
}

// WriteContact appends a new entry. The photo, when present, is kept next to
// the book as its own file.
func (b *Book) WriteContact(ctx context.Context, contact NewContact) bool {
	if !b.HasWriteAccess() || ctx.Err() != nil {
		return false
	}

	entry := models.DeviceEntry{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(strings.TrimSpace(contact.FirstName) + " " + strings.TrimSpace(contact.LastName)),
		Phones:    []string{strings.TrimSpace(contact.Phone)},
		CreatedAt: time.Now(),
	}

	if len(contact.Photo) > 0 {
		path, err := b.store.WriteAvatar(contact.Photo, photoExt(contact.Photo))
		if err != nil {
			b.logger.Warn("failed to store address book photo", "err", err)
		} else {
			entry.PhotoFile = path
		}
	}

	if err := b.append(entry); err != nil {
		b.logger.Error("failed to write address book entry", "err", err)
		return false
	}

	b.logger.Info("address book entry written", "id", entry.ID)
	return true
}

// Entries returns a copy of the book, ignoring grants. It backs export.
func (b *Book) Entries() ([]models.DeviceEntry, error) {
	return b.load()
}

func (b *Book) load() ([]models.DeviceEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := b.store.LoadAddressBook(b.passphrase)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (b *Book) append(entries ...models.DeviceEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	existing, err := b.store.LoadAddressBook(b.passphrase)
	if err != nil {
		return err
	}
	return b.store.SaveAddressBook(append(existing, entries...), b.passphrase)
}

func photoExt(data []byte) string {
	if http.DetectContentType(data) == "image/png" {
		return "png"
	}
	return "jpg"
}

var _ Provider = (*Book)(nil)
