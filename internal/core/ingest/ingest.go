package ingest

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/bmenergia/document-organizer/internal/core/domain"
	"github.com/bmenergia/document-organizer/internal/core/ports"
)

// Stats reports how a drop event was turned into a batch.
type Stats struct {
	Ingested int
	Excluded int
}

// Ingestor turns a drop event into a flat, relativized list of file
// descriptors. The three event kinds are handled in order of preference
// with graceful fallback: an empty entry tree falls back to the flat file
// list, an empty flat list to host-shell path expansion.
type Ingestor struct {
	expander ports.PathExpander
	filter   *ExclusionFilter
}

func NewIngestor(expander ports.PathExpander, filter *ExclusionFilter) *Ingestor {
	return &Ingestor{expander: expander, filter: filter}
}

func (in *Ingestor) Ingest(ctx context.Context, event domain.DropEvent) ([]domain.FileDescriptor, Stats, error) {
	descriptors, err := in.expand(ctx, event)
	if err != nil {
		return nil, Stats{}, err
	}
	if len(descriptors) == 0 {
		return nil, Stats{}, domain.WrapError(domain.ErrEmptyBatch, "ingest", errors.New("drop event produced no files"))
	}

	kept := descriptors[:0]
	excluded := 0
	for _, d := range descriptors {
		if in.filter != nil && in.filter.Excluded(d.RelativePath) {
			excluded++
			continue
		}
		kept = append(kept, d)
	}

	stats := Stats{Ingested: len(kept), Excluded: excluded}
	if len(kept) == 0 {
		return nil, stats, domain.WrapError(domain.ErrAllExcluded, "ingest",
			fmt.Errorf("all %d files live in excluded subtrees", excluded))
	}
	return kept, stats, nil
}

func (in *Ingestor) expand(ctx context.Context, event domain.DropEvent) ([]domain.FileDescriptor, error) {
	switch event.Kind {
	case domain.DropEntryTree, domain.DropFlatFiles, domain.DropAbsolutePaths:
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest", fmt.Errorf("unknown drop kind %q", event.Kind))
	}

	if event.Kind == domain.DropEntryTree || len(event.Entries) > 0 {
		if out := walkEntries(event.Entries); len(out) > 0 {
			return out, nil
		}
	}
	if event.Kind == domain.DropFlatFiles || len(event.Files) > 0 {
		if out := flattenFiles(event.Files); len(out) > 0 {
			return out, nil
		}
	}
	if len(event.Paths) > 0 {
		return in.expandPaths(ctx, event.Paths)
	}
	return nil, nil
}

// walkEntries traverses the entry tree depth-first, concatenating ancestor
// directory names into each leaf's relative path. Depth-first order per
// directory keeps path construction deterministic.
func walkEntries(entries []domain.DropEntry) []domain.FileDescriptor {
	var out []domain.FileDescriptor
	var walk func(prefix string, entry domain.DropEntry)
	walk = func(prefix string, entry domain.DropEntry) {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return
		}
		rel := name
		if prefix != "" {
			rel = prefix + "/" + name
		}
		if entry.Dir {
			for _, child := range entry.Children {
				walk(rel, child)
			}
			return
		}
		out = append(out, domain.FileDescriptor{
			Name:         name,
			RelativePath: rel,
			Size:         entry.Size,
			LastModified: entry.LastModified,
		})
	}
	for _, entry := range entries {
		walk("", entry)
	}
	return out
}

func flattenFiles(files []domain.DroppedFile) []domain.FileDescriptor {
	out := make([]domain.FileDescriptor, 0, len(files))
	for _, f := range files {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			continue
		}
		rel := normalizeRelative(f.RelativePathHint)
		if rel == "" {
			rel = name
		}
		out = append(out, domain.FileDescriptor{
			Name:         name,
			RelativePath: rel,
			Size:         f.Size,
			LastModified: f.LastModified,
		})
	}
	return out
}

func (in *Ingestor) expandPaths(ctx context.Context, roots []string) ([]domain.FileDescriptor, error) {
	if in.expander == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest",
			errors.New("absolute-path drop without a path expansion service"))
	}
	descriptors, err := in.expander.Expand(ctx, roots)
	if err != nil {
		return nil, fmt.Errorf("expand dropped paths: %w", err)
	}
	relativizeByCommonRoot(descriptors)
	return descriptors, nil
}

// relativizeByCommonRoot derives relative paths for descriptors that carry
// only absolute paths: the longest common directory prefix is stripped.
// Without a determinable common prefix the bare file name is used.
func relativizeByCommonRoot(descriptors []domain.FileDescriptor) {
	var flat []int
	for i, d := range descriptors {
		if d.AbsolutePath != "" && (d.RelativePath == "" || d.RelativePath == d.Name) {
			flat = append(flat, i)
		}
	}
	if len(flat) == 0 {
		return
	}

	dirs := make([]string, 0, len(flat))
	for _, i := range flat {
		dirs = append(dirs, path.Dir(normalizeRelative(descriptors[i].AbsolutePath)))
	}
	prefix := commonDir(dirs)
	for _, i := range flat {
		abs := normalizeRelative(descriptors[i].AbsolutePath)
		if prefix != "" && strings.HasPrefix(abs, prefix+"/") {
			descriptors[i].RelativePath = strings.TrimPrefix(abs, prefix+"/")
		} else {
			descriptors[i].RelativePath = descriptors[i].Name
		}
	}
}

// commonDir returns the longest directory prefix shared by every path, or
// "" when the inputs do not share one.
func commonDir(dirs []string) string {
	if len(dirs) == 0 {
		return ""
	}
	sorted := make([]string, len(dirs))
	copy(sorted, dirs)
	sort.Strings(sorted)

	first := strings.Split(sorted[0], "/")
	last := strings.Split(sorted[len(sorted)-1], "/")
	var shared []string
	for i := 0; i < len(first) && i < len(last); i++ {
		if first[i] != last[i] {
			break
		}
		shared = append(shared, first[i])
	}
	return strings.Join(shared, "/")
}

func normalizeRelative(p string) string {
	normalized := strings.ReplaceAll(p, "\\", "/")
	return strings.TrimPrefix(normalized, "/")
}
