package naming

import (
	"fmt"
	"strings"
)

const (
	titleToken   = "{title}"
	sectionToken = "{section}"

	// DefaultPattern is the rename convention used when none is configured.
	DefaultPattern = titleToken + " - " + sectionToken
)

// Format composes and recognizes names in a "{title}"/"{section}" pattern.
type Format struct {
	pattern string
}

// ParseFormat validates that pattern carries each placeholder exactly once.
func ParseFormat(pattern string) (Format, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultPattern
	}
	if n := strings.Count(pattern, titleToken); n != 1 {
		return Format{}, fmt.Errorf("naming format %q must contain %s exactly once", pattern, titleToken)
	}
	if n := strings.Count(pattern, sectionToken); n != 1 {
		return Format{}, fmt.Errorf("naming format %q must contain %s exactly once", pattern, sectionToken)
	}
	return Format{pattern: pattern}, nil
}

// DefaultFormat returns the "{title} - {section}" format.
func DefaultFormat() Format {
	return Format{pattern: DefaultPattern}
}

// Pattern returns the raw pattern string.
func (f Format) Pattern() string {
	if f.pattern == "" {
		return DefaultPattern
	}
	return f.pattern
}

// Compose renders a file name for title in section.
func (f Format) Compose(title, section string) string {
	return strings.NewReplacer(titleToken, title, sectionToken, section).Replace(f.Pattern())
}

// Parse reports whether name is already the composed name of some title in
// section, returning that title. The embedded title must be non-empty and in
// normalized form, so Parse(Compose(NormalizeTitle(t), s), s) always succeeds
// for a non-degenerate t.
func (f Format) Parse(name, section string) (string, bool) {
	expected := strings.Replace(f.Pattern(), sectionToken, section, 1)
	idx := strings.Index(expected, titleToken)
	if idx < 0 {
		return "", false
	}
	prefix := expected[:idx]
	suffix := expected[idx+len(titleToken):]
	if len(name) <= len(prefix)+len(suffix) {
		return "", false
	}
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return "", false
	}
	title := name[len(prefix) : len(name)-len(suffix)]
	if title == "" || NormalizeTitle(title) != title {
		return "", false
	}
	return title, true
}
