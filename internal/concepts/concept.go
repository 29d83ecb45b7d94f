// Package concepts defines pattern-based concepts and matches them against
// conversation titles.
package concepts

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Concept is a named, case-insensitive text pattern tracked across
// conversation titles. Concepts are built once per run and never mutated.
type Concept struct {
	Name    string
	Pattern *regexp.Regexp
}

// ParseDefinitions parses concept definitions from free-form text, one per
// line in the form "Name: pattern1|pattern2|...". Blank lines and lines
// starting with '#' are skipped. Bare single-word terms get word-boundary
// anchors; internal spaces in multi-word phrases become flexible whitespace.
// Invalid patterns are dropped with a logged warning rather than failing the
// whole set. logger may be nil.
func ParseDefinitions(content string, logger *zap.Logger) []Concept {
	var out []Concept
	seen := make(map[string]struct{})
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, patternText, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			if logger != nil {
				logger.Warn("duplicate concept name skipped", zap.String("concept", name))
			}
			continue
		}
		c, err := compile(name, strings.TrimSpace(patternText))
		if err != nil {
			if logger != nil {
				logger.Warn("invalid concept pattern skipped", zap.String("concept", name), zap.Error(err))
			}
			continue
		}
		seen[name] = struct{}{}
		out = append(out, c)
	}
	return out
}

// New builds a single concept from a name and pattern alternation, applying
// the same term normalization as ParseDefinitions.
func New(name, patternText string) (Concept, error) {
	return compile(name, patternText)
}

// compile normalizes and compiles one pattern alternation.
func compile(name, patternText string) (Concept, error) {
	parts := normalizeParts(patternText)
	if len(parts) == 0 {
		return Concept{}, fmt.Errorf("concept %q has no patterns", name)
	}
	re, err := regexp.Compile("(?i)" + strings.Join(parts, "|"))
	if err != nil {
		return Concept{}, fmt.Errorf("concept %q: %w", name, err)
	}
	return Concept{Name: name, Pattern: re}, nil
}

// normalizeParts splits an alternation and anchors each term: single words
// get \b boundaries, phrases get \s+ between words. Terms already carrying
// explicit \b anchors are left alone.
func normalizeParts(patternText string) []string {
	var parts []string
	for _, part := range strings.Split(patternText, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.HasPrefix(part, `\b`) && !strings.HasSuffix(part, `\b`) {
			if strings.Contains(part, " ") {
				part = strings.Join(strings.Fields(part), `\s+`)
			} else {
				part = `\b` + part + `\b`
			}
		}
		parts = append(parts, part)
	}
	return parts
}

// Names returns the concept names in definition order.
func Names(cs []Concept) []string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Name
	}
	return names
}
