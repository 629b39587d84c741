package tabular

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/logger"
)

// ReadZIP extracts every member of an archive into a fresh directory under
// scratchDir and reads the first member with a .csv extension.
// An archive without a CSV member yields a nil table and no error.
func ReadZIP(path, scratchDir string) (*domain.Table, error) {
	zr, err := zip.OpenReader(path)
	if errors.Is(err, zip.ErrInsecurePath) {
		if zr != nil {
			zr.Close()
		}
		return nil, fmt.Errorf("%w: archive %s has unsafe member paths", domain.ErrValidation, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: opening archive %s: %v", domain.ErrParse, path, err)
	}
	defer zr.Close()
	return extractAndRead(&zr.Reader, scratchDir)
}

// ReadZIPBytes is ReadZIP for an in-memory archive.
func ReadZIPBytes(data []byte, scratchDir string) (*domain.Table, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("%w: archive has unsafe member paths", domain.ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: opening archive: %v", domain.ErrParse, err)
	}
	return extractAndRead(zr, scratchDir)
}

func extractAndRead(zr *zip.Reader, scratchDir string) (*domain.Table, error) {
	dest := filepath.Join(scratchDir, "tabula-"+uuid.NewString())
	if err := os.MkdirAll(dest, 0700); err != nil {
		return nil, err
	}

	var firstCSV string
	for _, f := range zr.File {
		target, err := extractMember(f, dest)
		if err != nil {
			return nil, err
		}
		if firstCSV == "" && target != "" && strings.EqualFold(filepath.Ext(f.Name), ExtCSV) {
			firstCSV = target
		}
	}

	if firstCSV == "" {
		logger.Status("No CSV file found in archive.")
		return nil, nil
	}
	logger.Debug("tabular: reading %s from archive", firstCSV)
	return ReadCSV(firstCSV)
}

// extractMember writes one archive member under dest and returns its path.
// Directory entries return "". Members escaping dest are rejected.
func extractMember(f *zip.File, dest string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(f.Name))
	if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: archive member %q escapes extraction directory", domain.ErrValidation, f.Name)
	}
	if f.FileInfo().IsDir() {
		return "", os.MkdirAll(target, 0700)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0700); err != nil {
		return "", err
	}

	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrParse, f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return "", err
	}
	return target, out.Close()
}
