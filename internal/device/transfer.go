package device

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"rhystmorgan/phonebook/internal/models"
)

type ExportFormat int

const (
	FormatJSON ExportFormat = iota
	FormatCSV
)

const maxNameLength = 100

// FormatFromPath picks the format by file extension, defaulting to JSON.
func FormatFromPath(path string) ExportFormat {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FormatCSV
	}
	return FormatJSON
}

type ImportResult struct {
	TotalEntries    int
	ImportedEntries int
	SkippedEntries  int
	Errors          []ImportError
	Warnings        []string
}

type ImportError struct {
	LineNumber int
	Field      string
	Message    string
}

type entryData struct {
	Name      string    `json:"name"`
	Phones    []string  `json:"phones"`
	CreatedAt time.Time `json:"created_at"`

	lineNumber int
}

type exportWrapper struct {
	ExportedAt   time.Time   `json:"exported_at"`
	Version      string      `json:"version"`
	TotalEntries int         `json:"total_entries"`
	Entries      []entryData `json:"entries"`
}

// Export writes the whole book to path, regardless of grants.
func (b *Book) Export(path string, format ExportFormat) error {
	entries, err := b.Entries()
	if err != nil {
		return fmt.Errorf("failed to load address book: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	switch format {
	case FormatCSV:
		return exportCSV(file, entries)
	default:
		return exportJSON(file, entries)
	}
}

func exportJSON(file *os.File, entries []models.DeviceEntry) error {
	data := make([]entryData, 0, len(entries))
	for _, e := range entries {
		data = append(data, entryData{Name: e.Name, Phones: e.Phones, CreatedAt: e.CreatedAt})
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(exportWrapper{
		ExportedAt:   time.Now(),
		Version:      "1.0",
		TotalEntries: len(entries),
		Entries:      data,
	}); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func exportCSV(file *os.File, entries []models.DeviceEntry) error {
	writer := csv.NewWriter(file)

	if err := writer.Write([]string{"name", "phones", "created_at"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, e := range entries {
		record := []string{
			e.Name,
			strings.Join(e.Phones, ";"),
			e.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// Import merges the entries in path into the book. Rows without any phone
// number are rejected, and rows whose numbers are all already present are
// skipped.
func (b *Book) Import(path string, format ExportFormat) (*ImportResult, error) {
	var (
		rows []entryData
		err  error
	)
	switch format {
	case FormatCSV:
		rows, err = readCSV(path)
	default:
		rows, err = readJSON(path)
	}
	if err != nil {
		return nil, err
	}

	existing, err := b.Entries()
	if err != nil {
		return nil, fmt.Errorf("failed to load address book: %w", err)
	}

	known := make(map[string]bool)
	for _, e := range existing {
		for _, key := range e.PhoneKeys() {
			known[key] = true
		}
	}

	result := &ImportResult{
		TotalEntries: len(rows),
		Errors:       []ImportError{},
		Warnings:     []string{},
	}

	imported := make([]models.DeviceEntry, 0, len(rows))
	for _, row := range rows {
		entry, ok := validateRow(row, result)
		if !ok {
			continue
		}

		fresh := false
		for _, key := range entry.PhoneKeys() {
			if !known[key] {
				fresh = true
			}
		}
		if !fresh {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Line %d: %s is already in the address book", row.lineNumber, entry.DisplayName()))
			continue
		}

		for _, key := range entry.PhoneKeys() {
			known[key] = true
		}
		imported = append(imported, entry)
	}

	if len(imported) > 0 {
		if err := b.append(imported...); err != nil {
			return nil, fmt.Errorf("failed to save address book: %w", err)
		}
	}

	result.ImportedEntries = len(imported)
	result.SkippedEntries = result.TotalEntries - result.ImportedEntries
	b.logger.Info("address book import finished",
		"imported", result.ImportedEntries, "skipped", result.SkippedEntries)

	return result, nil
}

func validateRow(row entryData, result *ImportResult) (models.DeviceEntry, bool) {
	phones := make([]string, 0, len(row.Phones))
	for _, p := range row.Phones {
		if p = strings.TrimSpace(p); models.NormalizePhone(p) != "" {
			phones = append(phones, p)
		}
	}

	if len(phones) == 0 {
		result.Errors = append(result.Errors, ImportError{
			LineNumber: row.lineNumber,
			Field:      "phones",
			Message:    "At least one phone number is required",
		})
		return models.DeviceEntry{}, false
	}

	name := strings.TrimSpace(row.Name)
	if len([]rune(name)) > maxNameLength {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Line %d: Name truncated to %d characters", row.lineNumber, maxNameLength))
		name = string([]rune(name)[:maxNameLength])
	}

	createdAt := row.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return models.DeviceEntry{
		ID:        uuid.NewString(),
		Name:      name,
		Phones:    phones,
		CreatedAt: createdAt,
	}, true
}

func readJSON(path string) ([]entryData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var wrapper exportWrapper
	if err := json.NewDecoder(file).Decode(&wrapper); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	for i := range wrapper.Entries {
		wrapper.Entries[i].lineNumber = i + 1
	}
	return wrapper.Entries, nil
}

func readCSV(path string) ([]entryData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("empty CSV file")
	}

	headerMap := make(map[string]int)
	for idx, col := range records[0] {
		headerMap[strings.ToLower(strings.TrimSpace(col))] = idx
	}

	field := func(record []string, name string) string {
		if idx, exists := headerMap[name]; exists && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	rows := make([]entryData, 0, len(records)-1)
	for rowIdx, record := range records[1:] {
		row := entryData{
			Name:       field(record, "name"),
			lineNumber: rowIdx + 2,
		}

		phones := field(record, "phones")
		if phones == "" {
			phones = field(record, "phone")
		}
		if phones != "" {
			row.Phones = strings.Split(phones, ";")
		}

		if created := field(record, "created_at"); created != "" {
			if parsed, err := time.Parse(time.RFC3339, created); err == nil {
				row.CreatedAt = parsed
			}
		}

		rows = append(rows, row)
	}

	return rows, nil
}
