package domain

import "time"

// DateMode selects how the accounting period of a file is derived when the
// classifier itself does not dictate one.
type DateMode string

const (
	DateModeModification         DateMode = "mod"
	DateModeModificationMinusOne DateMode = "mod-1"
	DateModeFolder               DateMode = "folder"
)

type Partition string

const (
	PartitionAuto   Partition = "auto"
	PartitionManual Partition = "manual"
)

// FileDescriptor is one ingested file. RelativePath is slash-normalized,
// never starts with a slash, and is the uniqueness key within a batch.
// AbsolutePath is set only when the host exposes real filesystem paths.
type FileDescriptor struct {
	Name         string    `json:"name"`
	RelativePath string    `json:"relative_path"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	AbsolutePath string    `json:"absolute_path,omitempty"`
}

// Classification is the classifier output for one file. DocumentType is
// empty iff Confidence is zero. SuggestedName is set only for boletos,
// which are the one type renamed at the destination.
type Classification struct {
	DocumentType  string `json:"document_type"`
	Period        string `json:"period"`
	Confidence    int    `json:"confidence"`
	Reason        string `json:"reason"`
	SuggestedName string `json:"suggested_name,omitempty"`
}

// ManagedFile is a FileDescriptor plus mutable assignment state.
type ManagedFile struct {
	FileDescriptor
	Classification Classification `json:"classification"`
	Partition      Partition      `json:"partition"`
	AssignedFolder string         `json:"assigned_folder,omitempty"`
	CustomName     string         `json:"custom_name,omitempty"`
	ModePeriod     string         `json:"mode_period,omitempty"`
}

// EffectiveName is the file name used at the destination: the manual
// override wins, then the classifier's suggested rename, then the original.
func (f ManagedFile) EffectiveName() string {
	if f.CustomName != "" {
		return f.CustomName
	}
	if f.Classification.SuggestedName != "" {
		return f.Classification.SuggestedName
	}
	return f.Name
}
