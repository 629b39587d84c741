package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
	"github.com/custodia-labs/tabula/internal/logger"
	"github.com/custodia-labs/tabula/internal/normalisers/identifier"
)

// Ensure TableService implements the interface.
var _ driving.TableService = (*TableService)(nil)

// TableService reads and writes local table files through a codec.
type TableService struct {
	codec driven.TabularCodec
}

// NewTableService creates a table service.
func NewTableService(codec driven.TabularCodec) *TableService {
	return &TableService{codec: codec}
}

// Load reads a table file. An archive without a CSV member reports
// domain.ErrNotFound.
func (s *TableService) Load(path, sheet string) (*domain.Table, error) {
	t, err := s.codec.Load(path, sheet)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: no table in %s", domain.ErrNotFound, path)
	}
	return t, nil
}

// Save writes t to path. A .xlsx path gets a single-sheet workbook whose
// sheet is named after the file.
func (s *TableService) Save(t *domain.Table, path string) error {
	if t == nil {
		return fmt.Errorf("%w: no table to save", domain.ErrValidation)
	}

	var (
		data []byte
		err  error
	)
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".xlsx" {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		data, err = s.codec.EncodeWorkbook([]domain.NamedTable{{Name: name, Table: t}})
	} else {
		data, err = s.codec.EncodeCSV(t)
	}
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Debug("tables: wrote %d rows to %s", t.Len(), path)
	return nil
}

// CleanIDs keeps the rows whose column holds a canonical conversation ID.
func (s *TableService) CleanIDs(table *domain.Table, column string) (*domain.Table, error) {
	out, err := identifier.CleanIDColumn(table, column)
	if err != nil {
		return nil, err
	}
	logger.Debug("clean ids: kept %d of %d rows", out.Len(), table.Len())
	return out, nil
}
