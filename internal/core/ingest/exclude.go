package ingest

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bmenergia/document-organizer/internal/core/classify"
)

// ExclusionFilter drops files living under reserved subtrees. Patterns are
// matched against whole path segments after lower-casing and diacritic
// stripping, so "6_Relatórios", "06 RELATORIOS" and "6-relatorios" all hit
// the same rule.
type ExclusionFilter struct {
	patterns []*regexp.Regexp
}

// DefaultExclusionPatterns covers the reserved reports subtree and the
// legacy zero-prefixed results folder.
func DefaultExclusionPatterns() []string {
	return []string{
		`^0*6[\s_-]*relatorios$`,
		`^0+[\s_-]*resultados$`,
	}
}

func NewExclusionFilter(patterns []string) (*ExclusionFilter, error) {
	if len(patterns) == 0 {
		patterns = DefaultExclusionPatterns()
	}
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile exclusion pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return &ExclusionFilter{patterns: compiled}, nil
}

// Excluded reports whether any directory segment of the path matches a
// reserved-subtree pattern. The filter looks at segments, never at the
// whole path, so look-alike file names do not trigger it.
func (f *ExclusionFilter) Excluded(relativePath string) bool {
	normalized := strings.ReplaceAll(relativePath, "\\", "/")
	segments := strings.Split(normalized, "/")
	for i, seg := range segments {
		// The final segment is the file itself.
		if i == len(segments)-1 {
			break
		}
		canonical := classify.Normalize(strings.TrimSpace(seg))
		for _, re := range f.patterns {
			if re.MatchString(canonical) {
				return true
			}
		}
	}
	return false
}

type exclusionConfig struct {
	Patterns []string `yaml:"patterns"`
}

// LoadExclusionPatterns reads segment patterns from a YAML file. A missing
// path means "use the defaults".
func LoadExclusionPatterns(path string) ([]string, error) {
	if path == "" {
		return DefaultExclusionPatterns(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read exclusion config: %w", err)
	}
	var cfg exclusionConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse exclusion config: %w", err)
	}
	if len(cfg.Patterns) == 0 {
		return DefaultExclusionPatterns(), nil
	}
	return cfg.Patterns, nil
}
