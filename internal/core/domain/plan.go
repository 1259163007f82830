package domain

import "time"

type ConflictStrategy string

const (
	ConflictOverwrite ConflictStrategy = "overwrite"
	ConflictVersion   ConflictStrategy = "version"
	ConflictSkip      ConflictStrategy = "skip"
)

func ParseConflictStrategy(raw string) (ConflictStrategy, bool) {
	switch ConflictStrategy(raw) {
	case ConflictOverwrite, ConflictVersion, ConflictSkip:
		return ConflictStrategy(raw), true
	case "":
		return ConflictVersion, true
	}
	return "", false
}

// ProcessingOperation is one planned file move. SourcePath may be empty when
// the host never exposed an absolute path; the plan still carries the
// operation so the caller can warn instead of silently dropping it.
type ProcessingOperation struct {
	OriginalName string `json:"original_name"`
	NewName      string `json:"new_name"`
	SourcePath   string `json:"source_path"`
	TargetPath   string `json:"target_path"`
}

type PlanStatus string

const (
	PlanSubmitted PlanStatus = "submitted"
	PlanRunning   PlanStatus = "running"
	PlanCompleted PlanStatus = "completed"
)

type MovePlan struct {
	ID         string                `json:"id"`
	BatchID    string                `json:"batch_id"`
	Strategy   ConflictStrategy      `json:"strategy"`
	Status     PlanStatus            `json:"status"`
	Operations []ProcessingOperation `json:"operations"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// OperationResult is the mover's verdict for one operation. FinalName may
// differ from NewName when the version strategy had to disambiguate.
type OperationResult struct {
	Index        int    `json:"index"`
	OriginalName string `json:"original_name"`
	FinalName    string `json:"final_name,omitempty"`
	SourcePath   string `json:"source_path"`
	TargetPath   string `json:"target_path"`
	Succeeded    bool   `json:"succeeded"`
	Error        string `json:"error,omitempty"`
}

type PlanResult struct {
	PlanID    string            `json:"plan_id"`
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    []OperationResult `json:"failed"`
}
