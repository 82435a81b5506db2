package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"rhystmorgan/phonebook/internal/api"
	"rhystmorgan/phonebook/internal/audit"
	"rhystmorgan/phonebook/internal/config"
	"rhystmorgan/phonebook/internal/device"
	"rhystmorgan/phonebook/internal/logging"
	"rhystmorgan/phonebook/internal/metrics"
	"rhystmorgan/phonebook/internal/photos"
	"rhystmorgan/phonebook/internal/storage"
	"rhystmorgan/phonebook/internal/store"
	"rhystmorgan/phonebook/internal/views"
)

const avatarMaxAge = 7 * 24 * time.Hour

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "import", "export":
			return transfer(args[0], args[1:])
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	st, err := openStorage(cfg)
	if err != nil {
		return err
	}

	logger, logFile, err := logging.New(st.DataDir(), cfg.DebugLog)
	if err != nil {
		return err
	}
	defer logFile.Close()

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, m, logger)
		defer srv.Shutdown(context.Background())
	}

	if n, err := st.PruneAvatars(avatarMaxAge); err != nil {
		logger.Warn("failed to prune avatars", "error", err)
	} else if n > 0 {
		logger.Debug("pruned avatars", "count", n)
	}

	book := newBook(st, cfg, logger, m)

	client, err := api.NewClient(cfg.ToAPIConfig(), api.WithMetrics(m))
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	auditor, err := audit.NewAuditor(filepath.Join(st.DataDir(), "audit"))
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer auditor.Close()

	contacts := store.New(api.NewRepository(client), book,
		store.WithLogger(logger),
		store.WithMetrics(m),
		store.WithAuditor(auditor),
	)

	app, err := views.NewAppModel(views.Deps{
		Store:   contacts,
		Grants:  book,
		Storage: st,
		Auditor: auditor,
		Config:  cfg,
		Logger:  logger,
		Photos:  photos.NewFetcher(photos.NewCache(photos.DefaultTTL), photos.WithMetrics(m)),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	logger.Info("starting", "api_url", cfg.APIURL, "contacts_read", cfg.ContactsRead, "contacts_write", cfg.ContactsWrite)

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run application: %w", err)
	}
	return nil
}

// transfer moves entries between the local address book and a JSON or CSV
// file. It needs no API key.
func transfer(cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	format := fs.String("format", "", "file format: json or csv (default: from extension)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: pbterm %s [-format json|csv] <file>", cmd)
	}
	path := fs.Arg(0)

	cfg, err := config.LoadLocal()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	st, err := openStorage(cfg)
	if err != nil {
		return err
	}

	logger, logFile, err := logging.New(st.DataDir(), cfg.DebugLog)
	if err != nil {
		return err
	}
	defer logFile.Close()

	ef := device.FormatFromPath(path)
	switch *format {
	case "":
	case "json":
		ef = device.FormatJSON
	case "csv":
		ef = device.FormatCSV
	default:
		return fmt.Errorf("unknown format %q", *format)
	}

	book := newBook(st, cfg, logger, nil)

	if cmd == "export" {
		if err := book.Export(path, ef); err != nil {
			return err
		}
		fmt.Printf("Exported address book to %s\n", path)
		return nil
	}

	result, err := book.Import(path, ef)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d of %d entries (%d skipped)\n", result.ImportedEntries, result.TotalEntries, result.SkippedEntries)
	for _, e := range result.Errors {
		fmt.Printf("  line %d (%s): %s\n", e.LineNumber, e.Field, e.Message)
	}
	for _, w := range result.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
	return nil
}

func openStorage(cfg *config.AppConfig) (*storage.Storage, error) {
	var (
		st  *storage.Storage
		err error
	)
	if cfg.DataDir != "" {
		st, err = storage.NewStorageAt(cfg.DataDir)
	} else {
		st, err = storage.NewStorage()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open data directory: %w", err)
	}
	return st, nil
}

func newBook(st *storage.Storage, cfg *config.AppConfig, logger *slog.Logger, m *metrics.Metrics) *device.Book {
	opts := []device.Option{
		device.WithLogger(logger),
		device.WithPassphrase(cfg.AddressBookPassphrase),
	}
	if m != nil {
		opts = append(opts, device.WithMetrics(m))
	}
	return device.NewBook(st, device.Permissions{
		Read:  cfg.ContactsRead,
		Write: cfg.ContactsWrite,
	}, opts...)
}

func serveMetrics(addr string, m *metrics.Metrics, logger *slog.Logger) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	return srv
}
