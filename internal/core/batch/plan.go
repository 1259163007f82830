package batch

import (
	"regexp"
	"strings"

	"github.com/bmenergia/document-organizer/internal/core/domain"
)

// CCEE coded files get a per-code subfolder under the CCEE tree. The code
// is read from the effective file name, which for this type already follows
// the CCEE-<code>- prefix convention.
var cceeCodePattern = regexp.MustCompile(`(?i)^CCEE-([A-Z]+\d{3}|ND)-`)

// TargetPath builds the destination path of a file under the unit base
// path: base, taxonomy folder, optional CCEE subfolder, effective name.
// Separators are normalized to forward slashes.
func TargetPath(basePath string, f domain.ManagedFile) (string, bool) {
	folder, ok := ResolveFolder(f)
	if !ok {
		return "", false
	}

	parts := []string{strings.TrimRight(strings.ReplaceAll(basePath, "\\", "/"), "/")}
	parts = append(parts, folder.RelativePath)
	if sub := cceeSubfolder(f); sub != "" {
		parts = append(parts, sub)
	}
	parts = append(parts, f.EffectiveName())
	return strings.Join(parts, "/"), true
}

func cceeSubfolder(f domain.ManagedFile) string {
	docType := strings.ToUpper(f.Classification.DocumentType)
	if docType == "CCEE-BOLETOCA" {
		return "BOLETOCA"
	}
	if docType != "CCEE" {
		return ""
	}
	if m := cceeCodePattern.FindStringSubmatch(f.EffectiveName()); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}

// Compile turns the batch state into a move plan. Files without a source
// path stay in the plan with an empty SourcePath and are reported as
// warnings; the executor records them as failures instead of the compiler
// silently dropping them.
func Compile(basePath string, files []domain.ManagedFile) ([]domain.ProcessingOperation, []string) {
	var ops []domain.ProcessingOperation
	var warnings []string
	for _, f := range files {
		target, ok := TargetPath(basePath, f)
		if !ok {
			warnings = append(warnings, "no destination folder for "+f.RelativePath)
			continue
		}
		if f.AbsolutePath == "" {
			warnings = append(warnings, "no source path for "+f.RelativePath)
		}
		ops = append(ops, domain.ProcessingOperation{
			OriginalName: f.Name,
			NewName:      f.EffectiveName(),
			SourcePath:   strings.ReplaceAll(f.AbsolutePath, "\\", "/"),
			TargetPath:   target,
		})
	}
	return ops, warnings
}

// Summarize folds per-operation results into the plan-level tally.
func Summarize(planID string, results []domain.OperationResult) *domain.PlanResult {
	summary := &domain.PlanResult{PlanID: planID, Total: len(results)}
	for _, r := range results {
		if r.Succeeded {
			summary.Succeeded++
			continue
		}
		summary.Failed = append(summary.Failed, r)
	}
	return summary
}
