// Package sharepoint implements the document library port over Microsoft Graph.
//
// A SharePoint document library is a Graph drive of its site. Folders and
// files are drive items addressed by ID or by library-relative path.
package sharepoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/custodia-labs/tabula/internal/connectors/microsoft"
	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/logger"
)

// Ensure Site implements the interface.
var _ driven.DocumentLibrary = (*Site)(nil)

// Site is one SharePoint site reached through Graph.
type Site struct {
	client   *microsoft.Client
	hostname string
	sitePath string

	mu     sync.Mutex
	siteID string
}

// New creates a site for hostname (e.g. contoso.sharepoint.com) and
// server-relative sitePath (e.g. /sites/Reporting). An empty sitePath
// selects the root site.
func New(client *microsoft.Client, hostname, sitePath string) *Site {
	return &Site{
		client:   client,
		hostname: hostname,
		sitePath: "/" + strings.Trim(sitePath, "/"),
	}
}

type driveItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	WebURL string `json:"webUrl"`
	Size   int64  `json:"size"`
	Folder *struct {
		ChildCount int `json:"childCount"`
	} `json:"folder"`
	File *struct {
		MimeType string `json:"mimeType"`
	} `json:"file"`
	ParentReference struct {
		DriveID string `json:"driveId"`
	} `json:"parentReference"`
}

func (s *Site) resolveSiteID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.siteID != "" {
		return s.siteID, nil
	}

	endpoint := "/sites/" + s.hostname
	if s.sitePath != "/" {
		endpoint += ":" + escapePath(s.sitePath)
	}
	var site struct {
		ID string `json:"id"`
	}
	if err := s.client.GetJSON(ctx, endpoint, &site); err != nil {
		return "", fmt.Errorf("resolve site %s%s: %w", s.hostname, s.sitePath, err)
	}
	s.siteID = site.ID
	return s.siteID, nil
}

// FindLibrary returns the document library whose title matches, preferring
// an exact match over a case-insensitive one.
func (s *Site) FindLibrary(ctx context.Context, title string) (domain.Library, bool, error) {
	siteID, err := s.resolveSiteID(ctx)
	if err != nil {
		return domain.Library{}, false, err
	}

	var drives []domain.Library
	err = s.client.ListAll(ctx, "/sites/"+siteID+"/drives?$select=id,name,driveType", func(raw json.RawMessage) error {
		var d struct {
			ID        string `json:"id"`
			Name      string `json:"name"`
			DriveType string `json:"driveType"`
		}
		if err := json.Unmarshal(raw, &d); err != nil {
			return err
		}
		if d.DriveType == "" || d.DriveType == "documentLibrary" {
			drives = append(drives, domain.Library{ID: d.ID, Title: d.Name})
		}
		return nil
	})
	if err != nil {
		return domain.Library{}, false, fmt.Errorf("list libraries: %w", err)
	}

	for _, d := range drives {
		if d.Title == title {
			return d, true, nil
		}
	}
	for _, d := range drives {
		if strings.EqualFold(d.Title, title) {
			return d, true, nil
		}
	}
	return domain.Library{}, false, nil
}

// FindFolder resolves a library-relative folder path. A path that is absent
// or names a file reports found=false.
func (s *Site) FindFolder(ctx context.Context, lib domain.Library, folderPath string) (domain.Folder, bool, error) {
	rel := strings.Trim(folderPath, "/")
	endpoint := "/drives/" + lib.ID + "/root"
	if rel != "" {
		endpoint += ":/" + escapePath(rel)
	}

	var item driveItem
	err := s.client.GetJSON(ctx, endpoint, &item)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Debug("sharepoint: folder %q not found in %s", rel, lib.Title)
		return domain.Folder{}, false, nil
	}
	if err != nil {
		return domain.Folder{}, false, fmt.Errorf("find folder %q: %w", rel, err)
	}
	if item.Folder == nil {
		return domain.Folder{}, false, nil
	}

	name := item.Name
	if rel == "" {
		name = lib.Title
	}
	return domain.Folder{ID: item.ID, Name: name, Path: rel, DriveID: lib.ID, WebURL: item.WebURL}, true, nil
}

// ListChildren returns the files and subfolders directly under folder.
func (s *Site) ListChildren(ctx context.Context, folder domain.Folder) ([]domain.RemoteFile, []domain.Folder, error) {
	var files []domain.RemoteFile
	var folders []domain.Folder

	endpoint := "/drives/" + folder.DriveID + "/items/" + folder.ID + "/children?$top=200"
	err := s.client.ListAll(ctx, endpoint, func(raw json.RawMessage) error {
		var item driveItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return err
		}
		switch {
		case item.Folder != nil:
			folders = append(folders, domain.Folder{
				ID:      item.ID,
				Name:    item.Name,
				Path:    path.Join(folder.Path, item.Name),
				DriveID: folder.DriveID,
				WebURL:  item.WebURL,
			})
		case item.File != nil:
			files = append(files, domain.RemoteFile{
				ID:                item.ID,
				Name:              item.Name,
				ServerRelativeURL: fileLocator(folder, item),
				DriveID:           folder.DriveID,
				Size:              item.Size,
			})
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("list %q: %w", folder.Path, err)
	}
	return files, folders, nil
}

// Download returns the content of a file.
func (s *Site) Download(ctx context.Context, file domain.RemoteFile) ([]byte, error) {
	data, err := s.client.GetBytes(ctx, "/drives/"+file.DriveID+"/items/"+file.ID+"/content")
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", file.Name, err)
	}
	return data, nil
}

// Upload writes content as name under folder, replacing any existing file,
// and returns the server-relative URL of the stored file.
func (s *Site) Upload(ctx context.Context, folder domain.Folder, name string, data []byte) (string, error) {
	endpoint := "/drives/" + folder.DriveID + "/items/" + folder.ID + ":/" + url.PathEscape(name) + ":/content"

	var item driveItem
	if err := s.client.PutContent(ctx, endpoint, data, &item); err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return fileLocator(folder, item), nil
}

// escapePath escapes each segment of a slash-separated path.
func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// fileLocator returns the server-relative URL of item inside folder.
// Office documents report a viewer page as their webUrl, so the path is
// built from the folder's URL and the item name whenever the folder has one.
func fileLocator(folder domain.Folder, item driveItem) string {
	if base := serverRelative(folder.WebURL); base != "" && !isViewerPath(base) {
		return path.Join(base, item.Name)
	}
	return serverRelative(item.WebURL)
}

// serverRelative returns the decoded path component of a web URL.
// Viewer pages keep their query, which names the document.
func serverRelative(webURL string) string {
	u, err := url.Parse(webURL)
	if err != nil || u.Path == "" {
		return webURL
	}
	if isViewerPath(u.Path) && u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}

func isViewerPath(p string) bool {
	return strings.Contains(strings.ToLower(p), "/_layouts/")
}
