package util

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestWriteYAML_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"scalar string", "hello"},
		{"scalar int", 42},
		{"sequence", []any{"a", 1, 2.5, true}},
		{"mapping", map[string]any{
			"model": map[string]any{
				"name":   "random_forest",
				"params": map[string]any{"n_estimators": 100, "max_depth": 8},
			},
			"columns": []any{"case_id", "yr_of_estab"},
			"enabled": false,
			"empty":   nil,
		}},
	}

	dir := t.TempDir()
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "cfg", strings.Repeat("x", i+1)+".yaml")
			if err := WriteYAML(path, tt.value, false); err != nil {
				t.Fatalf("WriteYAML failed: %v", err)
			}
			got, err := ReadYAML(path)
			if err != nil {
				t.Fatalf("ReadYAML failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.value) {
				t.Errorf("round trip mismatch:\n got  %#v\n want %#v", got, tt.value)
			}
		})
	}
}

func TestWriteYAML_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c", "schema.yaml")
	if err := SaveYAML(path, map[string]any{"k": "v"}); err != nil {
		t.Fatalf("SaveYAML failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}
}

func TestWriteYAML_Replace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	if err := WriteYAML(path, map[string]any{"old": 1, "shared": "a"}, false); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}
	if err := WriteYAML(path, map[string]any{"new": 2}, true); err != nil {
		t.Fatalf("WriteYAML with replace failed: %v", err)
	}

	got, err := ReadYAML(path)
	if err != nil {
		t.Fatalf("ReadYAML failed: %v", err)
	}
	want := map[string]any{"new": 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected old content to be gone, got %#v", got)
	}
}

func TestWriteYAML_ReplaceMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh", "report.yaml")
	if err := WriteYAML(path, []any{"x"}, true); err != nil {
		t.Fatalf("WriteYAML with replace on missing file failed: %v", err)
	}
}

func TestLoadYAML_Typed(t *testing.T) {
	type schema struct {
		Columns   []string `yaml:"columns"`
		DropCols  []string `yaml:"drop_columns"`
		Threshold float64  `yaml:"threshold"`
	}
	path := filepath.Join(t.TempDir(), "schema.yaml")
	in := schema{Columns: []string{"a", "b"}, DropCols: []string{"case_id"}, Threshold: 0.6}
	if err := SaveYAML(path, in); err != nil {
		t.Fatalf("SaveYAML failed: %v", err)
	}

	var out schema
	if err := LoadYAML(path, &out); err != nil {
		t.Fatalf("LoadYAML failed: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("expected %+v, got %+v", in, out)
	}
}

func TestReadYAML_Missing(t *testing.T) {
	_, err := ReadYAML(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !IsKind(err, KindIO) {
		t.Errorf("expected io kind, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected wrapped fs.ErrNotExist, got %v", err)
	}
}

func TestReadYAML_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("key: [unclosed\n  - : :"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := ReadYAML(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !IsKind(err, KindParse) {
		t.Errorf("expected parse kind, got %v", err)
	}
}

func TestWriteYAML_Unserializable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	err := WriteYAML(path, map[string]any{"fn": func() {}}, false)
	if !IsKind(err, KindSerialize) {
		t.Fatalf("expected serialize kind, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("expected no file to be written, stat returned %v", statErr)
	}
}
