package domain

import "time"

type BatchStatus string

const (
	BatchAnalyzing BatchStatus = "analyzing"
	BatchReady     BatchStatus = "ready"
	BatchSubmitted BatchStatus = "submitted"
	BatchProcessed BatchStatus = "processed"
)

// BatchRecord is the persisted metadata of a batch; the file-level state
// lives in the orchestrator and is reported through BatchSnapshot.
type BatchRecord struct {
	ID            string      `json:"id"`
	BasePath      string      `json:"base_path"`
	DateMode      DateMode    `json:"date_mode"`
	Status        BatchStatus `json:"status"`
	TotalFiles    int         `json:"total_files"`
	ExcludedFiles int         `json:"excluded_files"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// BatchSnapshot is the UI-facing view of a batch: both partitions, derived
// per-folder counts and the exclusion tally.
type BatchSnapshot struct {
	ID            string         `json:"id"`
	BasePath      string         `json:"base_path"`
	DateMode      DateMode       `json:"date_mode"`
	Status        BatchStatus    `json:"status"`
	Auto          []ManagedFile  `json:"auto"`
	Manual        []ManagedFile  `json:"manual"`
	Counts        map[string]int `json:"counts"`
	TotalFiles    int            `json:"total_files"`
	ExcludedFiles int            `json:"excluded_files"`
}

// DropEvent is the ingestion input, decided once at the boundary: a
// hierarchical entry tree, a flat file list, or absolute root paths from a
// host shell integration.
type DropEvent struct {
	Kind    DropKind      `json:"kind"`
	Entries []DropEntry   `json:"entries,omitempty"`
	Files   []DroppedFile `json:"files,omitempty"`
	Paths   []string      `json:"paths,omitempty"`
}

type DropKind string

const (
	DropEntryTree     DropKind = "entryTree"
	DropFlatFiles     DropKind = "flatFiles"
	DropAbsolutePaths DropKind = "absolutePaths"
)

// DropEntry mirrors a directory-entry node. Leaf entries are files.
type DropEntry struct {
	Name         string      `json:"name"`
	Dir          bool        `json:"dir"`
	Size         int64       `json:"size,omitempty"`
	LastModified time.Time   `json:"last_modified,omitempty"`
	Children     []DropEntry `json:"children,omitempty"`
}

// DroppedFile is one file of a flat drop; RelativePathHint carries the
// browser-native relative path when the host provided one.
type DroppedFile struct {
	Name             string    `json:"name"`
	RelativePathHint string    `json:"relative_path,omitempty"`
	Size             int64     `json:"size"`
	LastModified     time.Time `json:"last_modified"`
}
