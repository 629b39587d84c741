package domain

// Tree column names.
const (
	ColumnDirectory = "directory"
	ColumnFileName  = "file_name"
	ColumnFileURL   = "file_url"
)

// Library is a document library within a remote site.
type Library struct {
	ID    string
	Title string
}

// Folder is a folder within a document library.
type Folder struct {
	ID      string
	Name    string
	Path    string // Library-relative path, "" for the library root.
	DriveID string
	WebURL  string
}

// RemoteFile is a file within a document library folder.
type RemoteFile struct {
	ID                string
	Name              string
	ServerRelativeURL string
	DriveID           string
	Size              int64
}

// TreeEntry is one file found by the tree walker.
type TreeEntry struct {
	Directory string
	FileName  string
	FileURL   string
}

// ExploreRequest describes a library lookup and optional file search.
type ExploreRequest struct {
	Library     string
	Subfolder   string
	Search      string
	ForceSearch bool
	Sheet       string
}

// ExploreResult reports how far a lookup got and what it produced.
type ExploreResult struct {
	LibraryFound   bool
	SubfolderFound bool
	FileFound      bool
	Downloaded     bool
	DownloadPath   string
	Tree           *Table
	Table          *Table
}

// UploadRequest carries exactly one payload to upload.
// Tables are written as a multi-sheet workbook, Table as CSV,
// LocalPath is uploaded as-is, and Data requires FileName.
type UploadRequest struct {
	Library   string
	Folder    string
	FileName  string
	Tables    []NamedTable
	Table     *Table
	LocalPath string
	Data      []byte
}

// UploadResult is the outcome of an upload. Uploads never fail with an error.
type UploadResult struct {
	Uploaded          bool
	ServerRelativeURL string
	Err               error
}
