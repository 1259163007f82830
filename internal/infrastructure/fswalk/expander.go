package fswalk

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmenergia/document-organizer/internal/core/domain"
)

// Expander enumerates real files under dropped absolute paths. A dropped
// directory contributes its whole subtree with relative paths rooted at
// the directory's own name, matching how a browser exposes a dropped
// folder.
type Expander struct{}

func New() *Expander {
	return &Expander{}
}

func (e *Expander) Expand(ctx context.Context, roots []string) ([]domain.FileDescriptor, error) {
	var out []domain.FileDescriptor
	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat dropped path: %w", err)
		}
		if !info.IsDir() {
			out = append(out, descriptor(root, filepath.Base(root), info))
			continue
		}
		files, err := walkDir(ctx, root)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}

func walkDir(ctx context.Context, root string) ([]domain.FileDescriptor, error) {
	base := filepath.Base(root)
	var out []domain.FileDescriptor
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}
		out = append(out, descriptor(path, base+"/"+filepath.ToSlash(rel), info))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk dropped dir %s: %w", root, err)
	}
	return out, nil
}

func descriptor(absolute, relative string, info fs.FileInfo) domain.FileDescriptor {
	return domain.FileDescriptor{
		Name:         filepath.Base(absolute),
		RelativePath: strings.TrimPrefix(relative, "/"),
		Size:         info.Size(),
		LastModified: info.ModTime(),
		AbsolutePath: filepath.ToSlash(absolute),
	}
}
