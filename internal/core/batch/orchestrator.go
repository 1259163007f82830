package batch

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bmenergia/document-organizer/internal/core/domain"
)

// Orchestrator owns the mutable state of one batch: the auto/manual
// partitions, per-folder counts and the analysis sequence guard. All
// mutation goes through its single-writer API; counts are recomputed from
// scratch after every mutation, never adjusted piecewise.
type Orchestrator struct {
	mu sync.Mutex

	id       string
	basePath string
	dateMode domain.DateMode

	seq      uint64
	status   domain.BatchStatus
	files    map[string]*domain.ManagedFile
	order    []string
	counts   map[string]int
	excluded int
}

func NewOrchestrator(id, basePath string, dateMode domain.DateMode) *Orchestrator {
	return &Orchestrator{
		id:       id,
		basePath: basePath,
		dateMode: dateMode,
		status:   domain.BatchAnalyzing,
		files:    make(map[string]*domain.ManagedFile),
		counts:   make(map[string]int),
	}
}

func (o *Orchestrator) ID() string       { return o.id }
func (o *Orchestrator) BasePath() string { return o.basePath }

// BeginAnalysis issues a new analysis sequence number. Any analysis begun
// earlier becomes stale: its completion is discarded on arrival.
func (o *Orchestrator) BeginAnalysis() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seq++
	o.status = domain.BatchAnalyzing
	return o.seq
}

// CompleteAnalysis installs the classified files for the given sequence
// number. Results of a superseded request are ignored and false returned.
func (o *Orchestrator) CompleteAnalysis(seq uint64, files []domain.ManagedFile, excluded int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if seq != o.seq {
		return false
	}

	o.files = make(map[string]*domain.ManagedFile, len(files))
	o.order = o.order[:0]
	for i := range files {
		f := files[i]
		if _, dup := o.files[f.RelativePath]; dup {
			continue
		}
		o.files[f.RelativePath] = &f
		o.order = append(o.order, f.RelativePath)
	}
	o.excluded = excluded
	o.status = domain.BatchReady
	o.recount()
	return true
}

// MoveToManual transitions an auto-classified file to the manual
// partition, dropping its document-type linkage. The classifier's
// suggested rename is preserved as the custom name so a later manual
// rename starts from it.
func (o *Orchestrator) MoveToManual(relativePath string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	f, err := o.lookup(relativePath)
	if err != nil {
		return err
	}
	if f.Partition != domain.PartitionAuto {
		return domain.WrapError(domain.ErrInvalidInput, "move to manual",
			fmt.Errorf("file %q is not in the auto partition", relativePath))
	}

	if f.CustomName == "" && f.Classification.SuggestedName != "" {
		f.CustomName = f.Classification.SuggestedName
	}
	f.Partition = domain.PartitionManual
	f.Classification.DocumentType = ""
	f.Classification.Confidence = 0
	f.Classification.SuggestedName = ""
	f.AssignedFolder = domain.MiscellanyFolderID
	o.recount()
	return nil
}

// AssignFolder assigns the same destination folder to every listed manual
// file atomically: either all assignments apply or none.
func (o *Orchestrator) AssignFolder(relativePaths []string, folderID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := domain.FolderByID(folderID); !ok {
		return domain.WrapError(domain.ErrInvalidInput, "assign folder",
			fmt.Errorf("unknown folder %q", folderID))
	}
	if len(relativePaths) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "assign folder", errors.New("no files selected"))
	}

	selected := make([]*domain.ManagedFile, 0, len(relativePaths))
	for _, rel := range relativePaths {
		f, err := o.lookup(rel)
		if err != nil {
			return err
		}
		if f.Partition != domain.PartitionManual {
			return domain.WrapError(domain.ErrInvalidInput, "assign folder",
				fmt.Errorf("file %q is not in the manual partition", rel))
		}
		selected = append(selected, f)
	}

	for _, f := range selected {
		f.AssignedFolder = folderID
	}
	o.recount()
	return nil
}

// Rename overrides the destination name of a manual file.
func (o *Orchestrator) Rename(relativePath, newName string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if strings.TrimSpace(newName) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "rename", errors.New("new name is empty"))
	}
	f, err := o.lookup(relativePath)
	if err != nil {
		return err
	}
	if f.Partition != domain.PartitionManual {
		return domain.WrapError(domain.ErrInvalidInput, "rename",
			fmt.Errorf("file %q is not in the manual partition", relativePath))
	}
	f.CustomName = strings.TrimSpace(newName)
	return nil
}

// Remove deletes a file from the batch entirely.
func (o *Orchestrator) Remove(relativePath string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, err := o.lookup(relativePath); err != nil {
		return err
	}
	delete(o.files, relativePath)
	for i, rel := range o.order {
		if rel == relativePath {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
	o.recount()
	return nil
}

// Finalizable reports whether the batch can be processed: every manual
// file must have a destination folder.
func (o *Orchestrator) Finalizable() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	var missing []string
	for _, rel := range o.order {
		f := o.files[rel]
		if f.Partition == domain.PartitionManual && f.AssignedFolder == "" {
			missing = append(missing, rel)
		}
	}
	if len(missing) > 0 {
		return domain.WrapError(domain.ErrUnassignedFiles, "finalize",
			fmt.Errorf("%d manual files without folder: %s", len(missing), strings.Join(missing, ", ")))
	}
	return nil
}

func (o *Orchestrator) SetStatus(status domain.BatchStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status = status
}

// Snapshot returns a copy of the full batch state.
func (o *Orchestrator) Snapshot() *domain.BatchSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := &domain.BatchSnapshot{
		ID:            o.id,
		BasePath:      o.basePath,
		DateMode:      o.dateMode,
		Status:        o.status,
		Counts:        make(map[string]int, len(o.counts)),
		TotalFiles:    len(o.order),
		ExcludedFiles: o.excluded,
	}
	for folder, n := range o.counts {
		snap.Counts[folder] = n
	}
	for _, rel := range o.order {
		f := *o.files[rel]
		if f.Partition == domain.PartitionAuto {
			snap.Auto = append(snap.Auto, f)
		} else {
			snap.Manual = append(snap.Manual, f)
		}
	}
	return snap
}

// Files returns the managed files in ingestion order.
func (o *Orchestrator) Files() []domain.ManagedFile {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]domain.ManagedFile, 0, len(o.order))
	for _, rel := range o.order {
		out = append(out, *o.files[rel])
	}
	return out
}

func (o *Orchestrator) lookup(relativePath string) (*domain.ManagedFile, error) {
	f, ok := o.files[relativePath]
	if !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "lookup file",
			fmt.Errorf("no file %q in batch", relativePath))
	}
	return f, nil
}

// recount rebuilds the per-folder counts from the full collection. Callers
// hold the mutex.
func (o *Orchestrator) recount() {
	counts := make(map[string]int)
	for _, f := range o.files {
		if folder, ok := ResolveFolder(*f); ok {
			counts[folder.ID]++
		}
	}
	o.counts = counts
}

// ResolveFolder determines the final destination folder of a file: the
// taxonomy route for auto files, the assigned folder for manual ones.
func ResolveFolder(f domain.ManagedFile) (domain.FolderTarget, bool) {
	if f.Partition == domain.PartitionAuto {
		return domain.FolderForType(f.Classification.DocumentType)
	}
	if f.AssignedFolder == "" {
		return domain.FolderTarget{}, false
	}
	return domain.FolderByID(f.AssignedFolder)
}
