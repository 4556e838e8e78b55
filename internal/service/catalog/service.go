package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

const catalogRange = "A2:Z"

var (
	// ErrUnknownCatalog is returned for sheet names outside the master catalogs.
	ErrUnknownCatalog = errors.New("unknown catalog")
	// ErrMissingField is returned when the first field of a new entry is empty.
	ErrMissingField = errors.New("required catalog field is empty")
)

// RangeReader reads master sheets.
type RangeReader interface {
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// MasterWriter appends master rows through the bound script.
type MasterWriter interface {
	AddMaster(ctx context.Context, sheetName string, row []interface{}) error
}

// Service reads and extends the master-data catalogs.
type Service struct {
	reader RangeReader
	writer MasterWriter
	logger *zap.Logger
}

// NewService wires the catalog service.
func NewService(reader RangeReader, writer MasterWriter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{reader: reader, writer: writer, logger: logger}
}

// List returns the catalog rows, optionally narrowed by a case-insensitive
// search over every field.
func (s *Service) List(ctx context.Context, name, search string) ([]models.CatalogEntry, error) {
	catalog, ok := models.ParseCatalog(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCatalog, name)
	}

	values, err := s.reader.ReadRange(ctx, fmt.Sprintf("%s!%s", catalog, catalogRange))
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", catalog, err)
	}

	fields := models.CatalogFields[catalog]
	needle := strings.ToLower(strings.TrimSpace(search))

	entries := make([]models.CatalogEntry, 0, len(values))
	for _, cells := range values {
		if cell(cells, 1) == "" && cell(cells, 2) == "" {
			continue
		}
		entry := make(models.CatalogEntry, len(fields))
		matched := needle == ""
		for i, field := range fields {
			value := cell(cells, i+1)
			entry[field] = value
			if !matched && strings.Contains(strings.ToLower(value), needle) {
				matched = true
			}
		}
		if matched {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// Names returns the distinct non-empty names of a catalog, in sheet order.
func (s *Service) Names(ctx context.Context, name string) ([]string, error) {
	entries, err := s.List(ctx, name, "")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(entries))
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		n := entry["name"]
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		names = append(names, n)
	}
	return names, nil
}

// Device looks up a device template by code for item auto-fill.
func (s *Service) Device(ctx context.Context, code string) (models.DeviceTemplate, bool, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return models.DeviceTemplate{}, false, nil
	}

	entries, err := s.List(ctx, string(models.CatalogDevices), "")
	if err != nil {
		return models.DeviceTemplate{}, false, err
	}

	for _, entry := range entries {
		if entry["code"] != code {
			continue
		}
		return models.DeviceTemplate{
			Code:         entry["code"],
			Name:         entry["name"],
			Details:      entry["details"],
			Unit:         entry["unit"],
			Manufacturer: entry["brand"],
			Country:      entry["country"],
			ModelSerial:  entry["model"],
		}, true, nil
	}
	return models.DeviceTemplate{}, false, nil
}

// Add appends a new entry. Column A receives a placeholder the sheet numbers itself.
func (s *Service) Add(ctx context.Context, name string, entry models.CatalogEntry) error {
	catalog, ok := models.ParseCatalog(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCatalog, name)
	}

	fields := models.CatalogFields[catalog]
	if strings.TrimSpace(entry[fields[0]]) == "" {
		return fmt.Errorf("%w: %s", ErrMissingField, fields[0])
	}

	row := make([]interface{}, 0, len(fields)+1)
	row = append(row, "'")
	for _, field := range fields {
		row = append(row, strings.TrimSpace(entry[field]))
	}

	if err := s.writer.AddMaster(ctx, string(catalog), row); err != nil {
		return fmt.Errorf("add %s entry: %w", catalog, err)
	}

	s.logger.Info("catalog entry added", zap.String("catalog", string(catalog)), zap.String(fields[0], entry[fields[0]]))
	return nil
}

func cell(cells []interface{}, idx int) string {
	if idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(models.CellString(cells[idx]))
}
