package feature

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadSchemaFirstValidWins(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "does_not_exist.json")
	broken := writeFile(t, dir, "broken.json", `{not json`)
	empty := writeFile(t, dir, "empty.json", `{"version":"x","features":[]}`)
	valid := writeFile(t, dir, "valid.json", `{"version":"9.9","features":[{"name":"age","default":20}]}`)

	schema, err := LoadSchema([]string{missing, broken, empty, valid})
	if err != nil {
		t.Fatalf("LoadSchema: %v", err)
	}
	if schema.Version() != "9.9" {
		t.Errorf("version = %q", schema.Version())
	}
	if schema.Len() != 1 || schema.Definitions()[0].Name != "age" {
		t.Errorf("definitions = %+v", schema.Definitions())
	}
}

func TestLoadSchemaAllCandidatesFail(t *testing.T) {
	dir := t.TempDir()
	broken := writeFile(t, dir, "broken.json", `[]`)

	_, err := LoadSchema([]string{filepath.Join(dir, "missing.json"), broken})
	if !errors.Is(err, ErrSchemaNotFound) {
		t.Errorf("err = %v, want ErrSchemaNotFound", err)
	}
}

func TestNewSchemaRejectsEmpty(t *testing.T) {
	if _, err := NewSchema("v1", nil); err == nil {
		t.Error("expected error for empty definition list")
	}
}
