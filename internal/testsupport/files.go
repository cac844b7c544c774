package testsupport

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WriteDoricoArchive writes a minimal Dorico project at path whose
// scoreinfo.xml carries title and composer. Empty values omit the element.
func WriteDoricoArchive(t testing.TB, path, title, composer string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	entries := []struct {
		name string
		body string
	}{
		{"META-INF/container.xml", "<container/>"},
		{"scoreinfo.xml", ScoreInfoXML(title, composer)},
		{"score.dtn", "binary"},
	}
	for _, entry := range entries {
		w, err := zw.Create(entry.name)
		if err != nil {
			t.Fatalf("zip create %s: %v", entry.name, err)
		}
		if _, err := w.Write([]byte(entry.body)); err != nil {
			t.Fatalf("zip write %s: %v", entry.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
}

// ScoreInfoXML renders a scoreinfo document in the shape Dorico writes.
func ScoreInfoXML(title, composer string) string {
	body := "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<scoreInfo>\n  <info>\n"
	if title != "" {
		body += fmt.Sprintf("    <kTitle>%s</kTitle>\n", title)
	}
	if composer != "" {
		body += fmt.Sprintf("    <kComposer>%s</kComposer>\n", composer)
	}
	body += "  </info>\n</scoreInfo>\n"
	return body
}
