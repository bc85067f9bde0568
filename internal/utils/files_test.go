package utils_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/incidentclean-cli/internal/utils"
)

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.csv", "c.xlsx"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "d.csv"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := utils.ExpandInputs([]string{filepath.Join(dir, "*.csv"), filepath.Join(dir, "a.csv"), filepath.Join(dir, "c.xlsx")})
	if err != nil {
		t.Fatalf("ExpandInputs: %v", err)
	}
	want := []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv"), filepath.Join(dir, "c.xlsx")}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	nested := filepath.Join(dir, "2018", "june")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(nested, "e.csv"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write nested: %v", err)
	}
	deep, err := utils.ExpandInputs([]string{filepath.Join(dir, "**", "e.csv")})
	if err != nil || len(deep) != 1 || deep[0] != filepath.Join(nested, "e.csv") {
		t.Fatalf("recursive glob = %v, %v", deep, err)
	}

	if _, err := utils.ExpandInputs([]string{filepath.Join(dir, "*.tsv")}); !errors.Is(err, utils.ErrNoInputs) {
		t.Fatalf("expected ErrNoInputs, got %v", err)
	}
}

func TestSafeWriteFileAndCleanedName(t *testing.T) {
	path := filepath.Join(t.TempDir(), utils.CleanedName("/data/attacks.xlsx"))
	if filepath.Base(path) != "attacks.clean.csv" {
		t.Fatalf("CleanedName = %s", filepath.Base(path))
	}
	if err := utils.SafeWriteFile(path, []byte("sex\nM\n")); err != nil {
		t.Fatalf("SafeWriteFile: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil || string(b) != "sex\nM\n" {
		t.Fatalf("read back %q, %v", b, err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestPrettyJSON(t *testing.T) {
	b, err := utils.PrettyJSON(map[string]int{"changed": 3})
	if err != nil {
		t.Fatalf("PrettyJSON: %v", err)
	}
	if string(b) != "{\n  \"changed\": 3\n}" {
		t.Fatalf("got %s", b)
	}
}
