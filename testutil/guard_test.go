package testutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInternalImportForbiddenPredicate(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"nutriplan/internal/core", true},
		{"example.com/mod/internal/x", true},
		{"nutriplan/pkg/domain", false},
	}
	for _, c := range cases {
		if got := InternalImportForbidden(c.in); got != c.want {
			t.Fatalf("InternalImportForbidden(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

func TestStorageDriverImportForbiddenPredicate(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"modernc.org/sqlite", true},
		{"modernc.org/sqlite/lib", true},
		{"github.com/jackc/pgx/v5/stdlib", true},
		{"github.com/aws/aws-sdk-go-v2/service/s3", true},
		{"github.com/jackc/pgxpool", false},
		{"database/sql", false},
	}
	for _, c := range cases {
		if got := StorageDriverImportForbidden(c.in); got != c.want {
			t.Fatalf("StorageDriverImportForbidden(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

func TestAssertNoDirectImportsIgnoresTestFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "x.go", "package tmp\nimport \"fmt\"\nfunc X(){fmt.Println(1)}")
	writeFile(t, dir, "x_test.go", "package tmp\nimport \"modernc.org/sqlite\"\n")
	if err := os.Mkdir(filepath.Join(dir, "sub.go"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	AssertNoDirectImports(t, dir, StorageDriverImportForbidden, "test files are skipped")
}

func TestDirectImportViolationsReported(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "x.go", "package tmp\nimport _ \"modernc.org/sqlite\"\n")
	viols, err := directImportViolations(dir, StorageDriverImportForbidden)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(viols) != 1 || !strings.Contains(viols[0], "x.go") {
		t.Fatalf("unexpected violations %v", viols)
	}
}

func TestDirectImportViolationsParseError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.go", "package tmp\nimport (")
	if _, err := directImportViolations(dir, StorageDriverImportForbidden); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestTransitiveDependencyViolationsUsesGoList(t *testing.T) {
	prev := goListDeps
	t.Cleanup(func() { goListDeps = prev })
	goListDeps = func(string) ([]byte, error) {
		return []byte("fmt\nmodernc.org/sqlite\n\nnutriplan/pkg/domain\n"), nil
	}
	viols, _, err := transitiveDependencyViolations("./...", StorageDriverImportForbidden)
	if err != nil {
		t.Fatalf("violations: %v", err)
	}
	if len(viols) != 1 || viols[0] != "modernc.org/sqlite" {
		t.Fatalf("unexpected violations %v", viols)
	}

	goListDeps = func(string) ([]byte, error) { return []byte("boom"), errors.New("exit 1") }
	if _, out, err := transitiveDependencyViolations("./...", StorageDriverImportForbidden); err == nil || string(out) != "boom" {
		t.Fatalf("expected go list error to surface, got %v %q", err, out)
	}
}

type recordingFatal struct{ msg string }

func (r *recordingFatal) Fatalf(format string, args ...any) { r.msg = fmt.Sprintf(format, args...) }

func TestFailHelpers(t *testing.T) {
	var r recordingFatal
	failIfDirectViolations(&r, "reason", nil)
	failIfTransitiveViolations(&r, "reason", nil)
	if r.msg != "" {
		t.Fatalf("no violations must not fail: %q", r.msg)
	}
	failIfDirectViolations(&r, "why", []string{"a"})
	if !strings.Contains(r.msg, "why") {
		t.Fatalf("missing reason: %q", r.msg)
	}
	failIfTransitiveViolations(&r, "deps", []string{"b"})
	if !strings.Contains(r.msg, "deps") {
		t.Fatalf("missing reason: %q", r.msg)
	}
}

func writeFile(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}
