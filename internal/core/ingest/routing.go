package ingest

import (
	"regexp"
	"strings"

	"github.com/bmenergia/document-organizer/internal/core/classify"
)

// Source-folder routing: files dropped from one of the unit's own numbered
// top-level folders go straight to the matching destination, keeping their
// original names. Matched on the normalized first path segment only.
var sourceFolderRoutes = []struct {
	pattern  *regexp.Regexp
	folderID string
}{
	{regexp.MustCompile(`^0*1[\s_-]*bm[\s_-]*energia$`), "bm-energia"},
	// "2_<client name>" needs a separator after the digit so plain years
	// like "2019-..." never match.
	{regexp.MustCompile(`^0*2[\s_-].+`), "documentos-cliente"},
	{regexp.MustCompile(`^0*3[\s_-].+`), "distribuidora"},
	{regexp.MustCompile(`^0*4[\s_-]*ccee$`), "ccee-modelagem"},
	{regexp.MustCompile(`^0*5[\s_-]*projetos?$`), "projetos"},
	{regexp.MustCompile(`^0*7[\s_-]*comercializadora(s)?$`), "comercializadoras"},
}

// RouteBySourceFolder returns the destination folder id for a file whose
// relative path starts in a mapped source folder. Paths without directory
// structure never route.
func RouteBySourceFolder(relativePath string) (string, bool) {
	normalized := strings.ReplaceAll(relativePath, "\\", "/")
	if !strings.Contains(normalized, "/") {
		return "", false
	}

	var first string
	for _, seg := range strings.Split(normalized, "/") {
		if seg != "" {
			first = seg
			break
		}
	}
	if first == "" {
		return "", false
	}

	canonical := classify.Normalize(strings.TrimSpace(first))
	for _, route := range sourceFolderRoutes {
		if route.pattern.MatchString(canonical) {
			return route.folderID, true
		}
	}
	return "", false
}
