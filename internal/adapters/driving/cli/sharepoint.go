package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

var (
	exploreLibrary string
	exploreFolder  string
	exploreSearch  string
	exploreForce   bool
	exploreSheet   string
	exploreTreeOut string
	exploreOut     string

	uploadLibrary string
	uploadFolder  string
	uploadName    string
)

var sharepointCmd = &cobra.Command{
	Use:     "sharepoint",
	Aliases: []string{"sp"},
	Short:   "Browse and upload to the SharePoint site",
}

var sharepointExploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "List a library folder or load a file from it",
	Long: `Resolve a document library and folder, then either list every file
beneath the folder or search for a file by name.

A search first looks at the folder's own files and only walks the whole
tree when nothing matches; --force always walks the tree. A matched CSV,
TSV or Excel file is loaded as a table. Anything else is downloaded.

Library and folder default to sharepoint.library and sharepoint.root_folder.

Examples:
  tabula sharepoint explore --folder "Reports/2024" --tree-out tree.csv
  tabula sharepoint explore --search "weekly" --sheet Summary --out weekly.csv`,
	Args: cobra.NoArgs,
	RunE: runSharePointExplore,
}

var sharepointUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a local file into a library folder",
	Long: `Upload a local file into a document library folder, replacing any
file with the same name.

Examples:
  tabula sharepoint upload details.xlsx --folder "Reports/2024"
  tabula sharepoint upload details.csv --name "details-may.csv"`,
	Args: cobra.ExactArgs(1),
	RunE: runSharePointUpload,
}

func init() {
	f := sharepointExploreCmd.Flags()
	f.StringVarP(&exploreLibrary, "library", "l", "", "document library (default sharepoint.library)")
	f.StringVarP(&exploreFolder, "folder", "f", "", "library-relative folder (default sharepoint.root_folder)")
	f.StringVarP(&exploreSearch, "search", "s", "", "case-insensitive file name fragment")
	f.BoolVar(&exploreForce, "force", false, "skip the immediate-level search and walk the tree")
	f.StringVar(&exploreSheet, "sheet", "", "worksheet of a matched workbook")
	f.StringVar(&exploreTreeOut, "tree-out", "", "write the file tree to a file")
	f.StringVarP(&exploreOut, "out", "o", "", "write the loaded table to a file")

	u := sharepointUploadCmd.Flags()
	u.StringVarP(&uploadLibrary, "library", "l", "", "document library (default sharepoint.library)")
	u.StringVarP(&uploadFolder, "folder", "f", "", "library-relative folder (default sharepoint.root_folder)")
	u.StringVarP(&uploadName, "name", "n", "", "remote file name (default the local name)")

	sharepointCmd.AddCommand(sharepointExploreCmd)
	sharepointCmd.AddCommand(sharepointUploadCmd)
	rootCmd.AddCommand(sharepointCmd)
}

// libraryDefaults fills an empty library or folder from the settings.
func libraryDefaults(library, folder string) (string, string) {
	if settingsService == nil {
		return library, folder
	}
	sp := settingsService.Get().SharePoint
	if library == "" {
		library = sp.Library
	}
	if folder == "" {
		folder = sp.RootFolder
	}
	return library, folder
}

func runSharePointExplore(cmd *cobra.Command, _ []string) error {
	if toolkit == nil {
		return errToolkitUnavailable
	}
	svc, err := toolkit.Explorer()
	if err != nil {
		return err
	}

	library, folder := libraryDefaults(exploreLibrary, exploreFolder)
	result, err := svc.Explore(cmd.Context(), domain.ExploreRequest{
		Library:     library,
		Subfolder:   folder,
		Search:      exploreSearch,
		ForceSearch: exploreForce,
		Sheet:       exploreSheet,
	})
	if err != nil {
		return err
	}

	cmd.Printf("library %s  folder %s  file %s\n",
		found(result.LibraryFound), found(result.SubfolderFound), found(result.FileFound))

	switch {
	case result.Table != nil:
		return emitTable(cmd, result.Table, exploreOut)
	case result.Downloaded:
		cmd.Println(successStyle.Render("Downloaded to " + result.DownloadPath))
	case result.Tree != nil:
		return emitTable(cmd, result.Tree, exploreTreeOut)
	}
	return nil
}

func found(ok bool) string {
	if ok {
		return successStyle.Render("found")
	}
	return failureStyle.Render("missing")
}

func runSharePointUpload(cmd *cobra.Command, args []string) error {
	if toolkit == nil {
		return errToolkitUnavailable
	}
	svc, err := toolkit.Explorer()
	if err != nil {
		return err
	}

	name := uploadName
	if name == "" {
		name = filepath.Base(args[0])
	}
	library, folder := libraryDefaults(uploadLibrary, uploadFolder)
	result := svc.Upload(cmd.Context(), domain.UploadRequest{
		Library:   library,
		Folder:    folder,
		FileName:  name,
		LocalPath: args[0],
	})
	if result.Err != nil {
		return fmt.Errorf("upload %s: %w", name, result.Err)
	}
	cmd.Println(successStyle.Render("Uploaded to " + result.ServerRelativeURL))
	return nil
}
