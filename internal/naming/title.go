package naming

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"scorelib/internal/textutil"
)

// ExtractTitle removes the first literal occurrence of alias from rawName and
// normalizes the residue. Only the first occurrence is removed because a title
// may legitimately repeat the instrument word. An empty result means the name
// carried nothing but the alias and must not be used as a rename target.
func ExtractTitle(rawName, alias string) string {
	name := norm.NFC.String(rawName)
	alias = norm.NFC.String(alias)
	if alias != "" {
		name = strings.Replace(name, alias, "", 1)
	}
	return NormalizeTitle(name)
}

// NormalizeTitle turns underscores into spaces, collapses whitespace runs,
// strips separator punctuation from both ends and replaces characters that
// are unsafe in file names. NormalizeTitle is idempotent. Residues without any
// letter or digit, or consisting solely of a file extension, normalize to "".
func NormalizeTitle(value string) string {
	value = textutil.SanitizeFileName(value)
	value = strings.ReplaceAll(value, "_", " ")
	value = strings.Join(strings.Fields(value), " ")
	value = strings.TrimFunc(value, isEdgeSeparator)
	if value == "" || !hasAlphanumeric(value) {
		return ""
	}
	if strings.HasPrefix(value, ".") && filepath.Ext(value) == value {
		return ""
	}
	return value
}

func isEdgeSeparator(r rune) bool {
	switch r {
	case '-', '_', '–', '—', ',', ';':
		return true
	}
	return unicode.IsSpace(r)
}

func hasAlphanumeric(value string) bool {
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}
