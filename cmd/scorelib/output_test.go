package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"scorelib/internal/catalog"
)

func TestWriteJSONKeepsNamesVerbatim(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	if err := writeJSON(cmd, map[string]string{"new_name": "Rock & Roll <Live> - Horn"}); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"Rock & Roll <Live> - Horn"`) {
		t.Fatalf("expected unescaped name, got %s", buf.String())
	}
}

func TestWriteJSONEmptyListIsArray(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	var pieces []catalog.Piece
	if err := writeJSON(cmd, pieces); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Fatalf("expected [], got %q", got)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	if renderTable(nil, nil, nil) != "" {
		t.Fatal("expected empty output without headers")
	}
	out := renderTable([]string{"Section", "Files"}, [][]string{{"Horn"}, {"Clarinet", "12"}}, []columnAlignment{alignLeft, alignRight})
	for _, want := range []string{"Section", "Files", "Horn", "Clarinet", "12"} {
		requireContains(t, out, want)
	}
	if lines := strings.Count(out, "\n") + 1; lines != 6 {
		t.Fatalf("expected 6 table lines, got %d:\n%s", lines, out)
	}
}

func TestRenderTableWrapsLongNamesOnWords(t *testing.T) {
	long := "Concerto for Orchestra in Three Movements Arranged for Community Band - Horn"
	out := renderTable([]string{"Outcome", "New name"}, [][]string{{"renamed", long}}, nil)
	requireContains(t, out, "Concerto for Orchestra")
	if strings.Contains(out, long) {
		t.Fatalf("expected long name to wrap, got:\n%s", out)
	}
	if strings.Contains(out, "Orchest\n") || strings.Contains(out, "Orche ") {
		t.Fatalf("expected wrap on word boundaries, got:\n%s", out)
	}
}
