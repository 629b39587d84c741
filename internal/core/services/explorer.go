package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
	"github.com/custodia-labs/tabula/internal/logger"
	"github.com/custodia-labs/tabula/internal/normalisers/record"
)

// Ensure ExplorerService implements the interface.
var _ driving.ExplorerService = (*ExplorerService)(nil)

// Default upload names.
const (
	DefaultWorkbookUploadName = "multiple_dfs.xlsx"
	DefaultTableUploadName    = "dataframe_upload.csv"
)

// loadableExtensions are the file types Explore reads into a table.
// Anything else is downloaded.
var loadableExtensions = map[string]bool{
	".csv":  true,
	".tsv":  true,
	".xls":  true,
	".xlsx": true,
}

// ExplorerService walks document libraries and moves files in and out of them.
type ExplorerService struct {
	library     driven.DocumentLibrary
	codec       driven.TabularCodec
	downloadDir string
}

// NewExplorerService creates an explorer. Non-tabular matches are saved
// under downloadDir.
func NewExplorerService(library driven.DocumentLibrary, codec driven.TabularCodec, downloadDir string) *ExplorerService {
	return &ExplorerService{library: library, codec: codec, downloadDir: downloadDir}
}

// treeFile is a file found by the walker with the directory it sits in.
type treeFile struct {
	directory string
	file      domain.RemoteFile
}

// BuildTree lists every file beneath folder. The directory of a file is the
// folder name joined with the names of the subfolders leading to it.
func (s *ExplorerService) BuildTree(ctx context.Context, folder domain.Folder) (*domain.Table, error) {
	files, err := s.walk(ctx, folder, "")
	if err != nil {
		return nil, err
	}
	return treeTable(files), nil
}

// walk visits the files of folder, then each subfolder in listing order.
func (s *ExplorerService) walk(ctx context.Context, folder domain.Folder, parent string) ([]treeFile, error) {
	dir := path.Join(parent, folder.Name)
	files, subfolders, err := s.library.ListChildren(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", dir, err)
	}

	out := make([]treeFile, 0, len(files))
	for _, f := range files {
		out = append(out, treeFile{directory: dir, file: f})
	}
	for _, sub := range subfolders {
		nested, err := s.walk(ctx, sub, dir)
		if err != nil {
			return nil, err
		}
		out = append(out, nested...)
	}
	return out, nil
}

func treeTable(files []treeFile) *domain.Table {
	t := domain.NewTable(domain.ColumnDirectory, domain.ColumnFileName, domain.ColumnFileURL)
	for _, f := range files {
		// Width always matches the three tree columns.
		_ = t.AppendRow(f.directory, f.file.Name, f.file.ServerRelativeURL)
	}
	return t
}

// Explore resolves a library and subfolder, then either searches for a file
// or lists the whole tree. A matched file is loaded as a table when it has a
// tabular extension and downloaded otherwise.
func (s *ExplorerService) Explore(ctx context.Context, req domain.ExploreRequest) (domain.ExploreResult, error) {
	var result domain.ExploreResult

	lib, found, err := s.library.FindLibrary(ctx, req.Library)
	if err != nil {
		return result, err
	}
	if !found {
		logger.Status("Could not find '%s' library.", req.Library)
		return result, nil
	}
	result.LibraryFound = true

	where := req.Subfolder
	if where == "" {
		where = req.Library
		logger.Status("No subfolder specified; using the library root: '%s'", req.Library)
	}
	folder, found, err := s.library.FindFolder(ctx, lib, strings.Trim(req.Subfolder, "/"))
	if err != nil {
		return result, err
	}
	if !found {
		logger.Status("Could not locate folder '%s' in '%s'.", req.Subfolder, req.Library)
		return result, nil
	}
	result.SubfolderFound = true

	var match *treeFile
	if req.Search != "" && !req.ForceSearch {
		files, _, err := s.library.ListChildren(ctx, folder)
		if err != nil {
			return result, err
		}
		for _, f := range files {
			if containsFold(f.Name, req.Search) {
				match = &treeFile{directory: folder.Name, file: f}
				break
			}
		}
		if match == nil {
			logger.Status("'%s' not found at immediate level of '%s'.", req.Search, where)
			logger.Status("Attempting deeper search...")
		}
	}

	if match == nil {
		logger.Status("Building file tree under '%s'...", where)
		files, err := s.walk(ctx, folder, "")
		if err != nil {
			return result, err
		}
		result.Tree = treeTable(files)
		if req.Search != "" {
			match = firstMatch(files, req.Search)
			if match == nil {
				logger.Status("Could not find '%s' under '%s'.", req.Search, where)
			}
		}
	}

	if match == nil {
		return result, nil
	}
	result.FileFound = true
	return s.fetch(ctx, match.file, req.Sheet, result)
}

func firstMatch(files []treeFile, search string) *treeFile {
	for i := range files {
		if containsFold(files[i].file.Name, search) {
			return &files[i]
		}
	}
	return nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// fetch loads a tabular file or downloads anything else.
func (s *ExplorerService) fetch(
	ctx context.Context, file domain.RemoteFile, sheet string, result domain.ExploreResult,
) (domain.ExploreResult, error) {
	data, err := s.library.Download(ctx, file)
	if err != nil {
		return result, err
	}

	if loadableExtensions[strings.ToLower(filepath.Ext(file.Name))] {
		table, err := s.codec.LoadBytes(file.Name, data, sheet)
		var choice *domain.SheetChoiceError
		if errors.As(err, &choice) {
			logger.Status("Found sheet names: %s", strings.Join(choice.Sheets, ", "))
			logger.Status("Provide a sheet name to load a specific worksheet.")
			return result, nil
		}
		if err != nil {
			return result, fmt.Errorf("load %s: %w", file.Name, err)
		}
		if err := record.CleanNames(table); err != nil {
			return result, err
		}
		result.Table = table
		return result, nil
	}

	if err := os.MkdirAll(s.downloadDir, 0755); err != nil {
		return result, err
	}
	local := filepath.Join(s.downloadDir, filepath.Base(file.Name))
	logger.Status("Downloading '%s' to '%s' ...", file.Name, local)
	if err := os.WriteFile(local, data, 0644); err != nil {
		return result, err
	}
	result.Downloaded = true
	result.DownloadPath = local
	return result, nil
}

// Upload writes exactly one payload into a library folder.
// Failures are reported in the result.
func (s *ExplorerService) Upload(ctx context.Context, req domain.UploadRequest) domain.UploadResult {
	name, data, err := s.uploadPayload(req)
	if err != nil {
		return domain.UploadResult{Err: err}
	}

	lib, found, err := s.library.FindLibrary(ctx, req.Library)
	if err != nil {
		return domain.UploadResult{Err: err}
	}
	if !found {
		return domain.UploadResult{Err: fmt.Errorf("%w: document library %q", domain.ErrNotFound, req.Library)}
	}
	folder, found, err := s.library.FindFolder(ctx, lib, strings.Trim(req.Folder, "/"))
	if err != nil {
		return domain.UploadResult{Err: err}
	}
	if !found {
		return domain.UploadResult{Err: fmt.Errorf("%w: folder %q in %q", domain.ErrNotFound, req.Folder, req.Library)}
	}

	url, err := s.library.Upload(ctx, folder, name, data)
	if err != nil {
		return domain.UploadResult{Err: err}
	}
	logger.Status("Uploaded '%s' to '%s'.", name, url)
	return domain.UploadResult{Uploaded: true, ServerRelativeURL: url}
}

// uploadPayload renders the single payload of req and picks its file name.
func (s *ExplorerService) uploadPayload(req domain.UploadRequest) (string, []byte, error) {
	given := 0
	for _, set := range []bool{len(req.Tables) > 0, req.Table != nil, req.LocalPath != "", req.Data != nil} {
		if set {
			given++
		}
	}
	if given != 1 {
		return "", nil, fmt.Errorf("%w: exactly one upload payload is required, got %d", domain.ErrValidation, given)
	}

	name := req.FileName
	switch {
	case len(req.Tables) > 0:
		if name == "" {
			name = DefaultWorkbookUploadName
		}
		data, err := s.codec.EncodeWorkbook(req.Tables)
		return name, data, err
	case req.Table != nil:
		if name == "" {
			name = DefaultTableUploadName
		}
		data, err := s.codec.EncodeCSV(req.Table)
		return name, data, err
	case req.LocalPath != "":
		if name == "" {
			name = filepath.Base(req.LocalPath)
		}
		data, err := os.ReadFile(req.LocalPath)
		if err != nil {
			return "", nil, fmt.Errorf("read %s: %w", req.LocalPath, err)
		}
		return name, data, nil
	default:
		if name == "" {
			return "", nil, fmt.Errorf("%w: a file name is required when uploading raw bytes", domain.ErrValidation)
		}
		return name, req.Data, nil
	}
}
