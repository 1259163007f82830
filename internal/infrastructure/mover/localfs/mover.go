package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmenergia/document-organizer/internal/core/domain"
)

// Mover executes planned moves on the local filesystem. Destination
// directories are created on demand; name conflicts are resolved by the
// plan's strategy.
type Mover struct{}

func NewMover() *Mover {
	return &Mover{}
}

// Move relocates op.SourcePath to op.TargetPath and returns the base name
// that actually landed at the destination. With the version strategy a
// taken name gets a numeric suffix before the extension.
func (m *Mover) Move(_ context.Context, op domain.ProcessingOperation, strategy domain.ConflictStrategy) (string, error) {
	source := filepath.FromSlash(op.SourcePath)
	target := filepath.FromSlash(op.TargetPath)

	if _, err := os.Stat(source); err != nil {
		return "", fmt.Errorf("stat source: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create target dir: %w", err)
	}

	target, err := resolveConflict(target, strategy)
	if err != nil {
		return "", err
	}
	if err := rename(source, target); err != nil {
		return "", err
	}
	return filepath.Base(target), nil
}

func resolveConflict(target string, strategy domain.ConflictStrategy) (string, error) {
	if _, err := os.Stat(target); errors.Is(err, os.ErrNotExist) {
		return target, nil
	} else if err != nil {
		return "", fmt.Errorf("stat target: %w", err)
	}

	switch strategy {
	case domain.ConflictOverwrite:
		return target, nil
	case domain.ConflictSkip:
		return "", fmt.Errorf("destination %s exists, move skipped: %w", filepath.Base(target), os.ErrExist)
	default:
		return versionedTarget(target)
	}
}

// versionedTarget finds the first free "name-N.ext" variant.
func versionedTarget(target string) (string, error) {
	dir := filepath.Dir(target)
	ext := filepath.Ext(target)
	stem := strings.TrimSuffix(filepath.Base(target), ext)

	for n := 1; n <= 10000; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s-%d%s", stem, n, ext))
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		} else if err != nil {
			return "", fmt.Errorf("stat candidate: %w", err)
		}
	}
	return "", fmt.Errorf("no free versioned name for %s", filepath.Base(target))
}

// rename falls back to copy-and-remove when the source and target live on
// different filesystems.
func rename(source, target string) error {
	if err := os.Rename(source, target); err == nil {
		return nil
	}
	if err := copyFile(source, target); err != nil {
		return err
	}
	if err := os.Remove(source); err != nil {
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}

func copyFile(source, target string) error {
	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create target: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	return out.Sync()
}
