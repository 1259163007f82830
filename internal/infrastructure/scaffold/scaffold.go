package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmenergia/document-organizer/internal/core/domain"
)

// CCEE subfolders pre-created for every unit. Moves into other codes
// create their directories on demand.
var cceeSubcodes = []string{
	"CFZ003", "CFZ004", "GFN001", "LFN001", "LFRCA001",
	"LFRES001", "PEN001", "SUM001", "BOLETOCA", "ND",
}

// CreateUnitTree lays out the standard folder structure under a unit's
// base path. The miscellany folder is created on first use, not up front.
func CreateUnitTree(basePath string) error {
	for _, folder := range domain.Folders() {
		if folder.ID == domain.MiscellanyFolderID {
			continue
		}
		dir := filepath.Join(basePath, filepath.FromSlash(folder.RelativePath))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create folder %s: %w", folder.RelativePath, err)
		}
	}

	ccee, _ := domain.FolderByID("ccee-dri")
	for _, code := range cceeSubcodes {
		dir := filepath.Join(basePath, filepath.FromSlash(ccee.RelativePath), code)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create ccee subfolder %s: %w", code, err)
		}
	}
	return nil
}
