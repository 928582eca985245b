package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSource(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLintFindsMissingAndDuplicateMarkers(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "a.go", "package q\n\nconst QGood = `--sql 3c1f2b7e-95d4-4a0e-bc61-2f7e8a9d4c50\nSELECT 1`\n\nconst QMissing = `SELECT token FROM integration_tokens`\n\nconst Label = \"not sql\"\n")
	writeSource(t, dir, "b.go", "package q\n\nconst QDup = `--sql 3c1f2b7e-95d4-4a0e-bc61-2f7e8a9d4c50\nDELETE FROM integration_tokens`\n")

	l := newLinter()
	if err := l.lintPath(dir); err != nil {
		t.Fatalf("lintPath: %v", err)
	}
	if len(l.findings) != 2 {
		t.Fatalf("expected 2 findings, got %d: %v", len(l.findings), l.findings)
	}
	if l.findings[0].name != "QMissing" || !strings.Contains(l.findings[0].message, "missing") {
		t.Fatalf("unexpected first finding %v", l.findings[0])
	}
	if l.findings[1].name != "QDup" || !strings.Contains(l.findings[1].message, "already used") {
		t.Fatalf("unexpected second finding %v", l.findings[1])
	}
}

func TestLintRepositoryQueries(t *testing.T) {
	l := newLinter()
	if err := l.lintPath(filepath.Join("..", "..", "sqlinline")); err != nil {
		t.Fatalf("lintPath: %v", err)
	}
	for _, f := range l.findings {
		t.Errorf("%s", f)
	}
}
