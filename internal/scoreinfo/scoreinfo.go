package scoreinfo

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	scoreInfoEntry = "scoreinfo.xml"
	titleElement   = "kTitle"
	composerElem   = "kComposer"
)

// FieldTitle and FieldComposer name the metadata fields in MissingFieldError.
const (
	FieldTitle    = "title"
	FieldComposer = "composer"
)

// ErrNoScoreInfo reports an archive without a scoreinfo.xml entry.
var ErrNoScoreInfo = errors.New("no scoreinfo.xml entry")

// Metadata is what a Dorico project says about itself.
type Metadata struct {
	Title    string `json:"title"`
	Composer string `json:"composer"`
	// Entry is the archive member the metadata was read from.
	Entry string `json:"entry"`
}

// MalformedArchiveError reports a file that is not a readable Dorico archive.
type MalformedArchiveError struct {
	Path string
	Err  error
}

func (e *MalformedArchiveError) Error() string {
	return fmt.Sprintf("scoreinfo: %s is not a readable dorico archive: %v", e.Path, e.Err)
}

func (e *MalformedArchiveError) Unwrap() error { return e.Err }

// MissingFieldError reports a scoreinfo document without a required field.
type MissingFieldError struct {
	Path  string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("scoreinfo: %s has no %s", e.Path, e.Field)
}

// Extract reads title and composer from the Dorico archive at path. When a
// field is missing the returned Metadata still carries whatever was found
// alongside a *MissingFieldError for the first absent field.
func Extract(path string) (Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("scoreinfo: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Metadata{}, fmt.Errorf("scoreinfo: stat %s: %w", path, err)
	}
	return ExtractReader(f, info.Size(), path)
}

// ExtractReader is Extract over an in-memory or already open archive. name
// is used in errors only.
func ExtractReader(r io.ReaderAt, size int64, name string) (Metadata, error) {
	archive, err := zip.NewReader(r, size)
	if err != nil {
		return Metadata{}, &MalformedArchiveError{Path: name, Err: err}
	}

	var entry *zip.File
	for _, file := range archive.File {
		if strings.Contains(file.Name, scoreInfoEntry) {
			entry = file
			break
		}
	}
	if entry == nil {
		return Metadata{}, &MalformedArchiveError{Path: name, Err: ErrNoScoreInfo}
	}

	rc, err := entry.Open()
	if err != nil {
		return Metadata{}, &MalformedArchiveError{Path: name, Err: fmt.Errorf("open %s: %w", entry.Name, err)}
	}
	defer rc.Close()

	fields, err := firstElements(rc, titleElement, composerElem)
	if err != nil {
		return Metadata{}, &MalformedArchiveError{Path: name, Err: fmt.Errorf("parse %s: %w", entry.Name, err)}
	}

	meta := Metadata{
		Title:    fields[titleElement],
		Composer: fields[composerElem],
		Entry:    entry.Name,
	}
	if meta.Title == "" {
		return meta, &MissingFieldError{Path: name, Field: FieldTitle}
	}
	if meta.Composer == "" {
		return meta, &MissingFieldError{Path: name, Field: FieldComposer}
	}
	return meta, nil
}

// firstElements returns the trimmed text of the first element with each
// local name, at any depth. Parsing stops once every name has been seen.
func firstElements(r io.Reader, names ...string) (map[string]string, error) {
	want := make(map[string]bool, len(names))
	for _, name := range names {
		want[name] = true
	}
	found := make(map[string]string, len(names))

	decoder := xml.NewDecoder(r)
	decoder.Strict = false
	for len(want) > 0 {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok || !want[start.Name.Local] {
			continue
		}
		var text struct {
			Value string `xml:",chardata"`
		}
		if err := decoder.DecodeElement(&text, &start); err != nil {
			return nil, err
		}
		found[start.Name.Local] = strings.TrimSpace(text.Value)
		delete(want, start.Name.Local)
	}
	return found, nil
}

// TitleFromFileName derives a display title from an archive file name, for
// projects whose scoreinfo has no title.
func TitleFromFileName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var cleaned strings.Builder
	prevSpace := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return ""
	}
	return cases.Title(language.Und).String(title)
}
