package main

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.lorenzomilicia.dev/visa-approval-prediction/internal/util"
)

// runArtifacts executes the root command with args and returns what it
// printed to stdout and the JSON log lines.
func runArtifacts(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("VISA_LOG_LEVEL", "info")
	t.Setenv("VISA_LOG_FORMAT", "json")
	t.Setenv("VISA_ARTIFACTS_DIR", "")
	t.Setenv("VISA_S3_BUCKET", "")
	t.Setenv("VISA_S3_PREFIX", "")

	// flag values persist between executions
	envFile, configFile, debug = "", "", false
	yamlReplace = false
	arrayPreview = 10
	tableInput, tableOutput, tableColumns = "", "", nil
	pushInputDir, pushPrefix, pushForce, pushDryRun = "", "", false, false
	pullOutputDir, pullPrefix = "", ""

	var out, logs bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&logs)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), logs.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestYAMLShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	writeFile(t, path, "threshold: 0.6\nmodel:\n    name: knn\n")

	out, _, err := runArtifacts(t, "yaml", "show", path)
	if err != nil {
		t.Fatalf("yaml show failed: %v", err)
	}
	want := "model:\n  name: knn\nthreshold: 0.6\n"
	if out != want {
		t.Errorf("unexpected output:\n got  %q\n want %q", out, want)
	}

	if _, _, err := runArtifacts(t, "yaml", "show", filepath.Join(t.TempDir(), "missing.yaml")); !util.IsKind(err, util.KindIO) {
		t.Errorf("expected io kind for missing file, got %v", err)
	}
}

func TestYAMLSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "model.yaml")

	if _, _, err := runArtifacts(t, "yaml", "set", path, "model.params.k", "5"); err != nil {
		t.Fatalf("yaml set failed: %v", err)
	}
	if _, _, err := runArtifacts(t, "yaml", "set", path, "model.name", "knn"); err != nil {
		t.Fatalf("yaml set failed: %v", err)
	}
	got, err := util.ReadYAML(path)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"model": map[string]any{
			"name":   "knn",
			"params": map[string]any{"k": 5},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if _, _, err := runArtifacts(t, "yaml", "set", "--replace", path, "threshold", "0.6"); err != nil {
		t.Fatalf("yaml set --replace failed: %v", err)
	}
	got, err = util.ReadYAML(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := map[string]any{"threshold": 0.6}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v after replace, got %v", want, got)
	}
}

func TestArrayInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.npy")
	arr, err := util.NewArray([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatal(err)
	}
	if err := util.SaveArray(path, arr); err != nil {
		t.Fatal(err)
	}

	out, _, err := runArtifacts(t, "array", "info", path)
	if err != nil {
		t.Fatalf("array info failed: %v", err)
	}
	want := "dtype:    f8\n" +
		"shape:    [2 3]\n" +
		"ndim:     2\n" +
		"elements: 6\n" +
		"preview:  [1 2 3 4 5 6]\n"
	if out != want {
		t.Errorf("unexpected output:\n got  %q\n want %q", out, want)
	}

	out, _, err = runArtifacts(t, "array", "info", "-n", "2", path)
	if err != nil {
		t.Fatalf("array info failed: %v", err)
	}
	if !strings.Contains(out, "preview:  [1 2] ...\n") {
		t.Errorf("expected truncated preview, got %q", out)
	}
}

func TestObjectInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model_trainer", "classes.obj")
	if err := util.SaveObject(path, []string{"Certified", "Denied"}); err != nil {
		t.Fatal(err)
	}

	out, _, err := runArtifacts(t, "object", "info", path)
	if err != nil {
		t.Fatalf("object info failed: %v", err)
	}
	if !strings.HasPrefix(out, "type: []string\nsize: ") {
		t.Errorf("unexpected output %q", out)
	}

	bad := filepath.Join(t.TempDir(), "bad.obj")
	writeFile(t, bad, "not an object")
	if _, _, err := runArtifacts(t, "object", "info", bad); !util.IsKind(err, util.KindDeserialize) {
		t.Errorf("expected deserialize kind, got %v", err)
	}
}

func TestTableDrop(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "train.csv")
	out := filepath.Join(dir, "clean", "train.csv")
	writeFile(t, in, "case_id,zip,wage\nEZYV01,00501,1e3\nEZYV02,02134,NA\n")

	_, logs, err := runArtifacts(t, "table", "drop", "-i", in, "-o", out, "-c", "case_id")
	if err != nil {
		t.Fatalf("table drop failed: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if want := "zip,wage\n00501,1e3\n02134,NA\n"; string(got) != want {
		t.Errorf("unexpected output CSV:\n got  %q\n want %q", got, want)
	}
	if !strings.Contains(logs, `"message":"Columns dropped"`) {
		t.Errorf("expected completion log, got:\n%s", logs)
	}
}

func TestTableDrop_MissingColumn(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "train.csv")
	out := filepath.Join(dir, "clean.csv")
	writeFile(t, in, "case_id,zip\nEZYV01,00501\n")

	_, _, err := runArtifacts(t, "table", "drop", "-i", in, "-o", out, "-c", "case_id,visa_status")
	if !util.IsKind(err, util.KindColumn) {
		t.Fatalf("expected column kind, got %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("expected no output file, stat returned %v", err)
	}

	if _, _, err := runArtifacts(t, "table", "drop", "-i", in, "-o", out, "-c", " , "); err == nil {
		t.Error("expected error when no columns are given")
	}
}

func TestPush_DryRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "data_ingestion", "train.csv"), "a\n1\n")
	writeFile(t, filepath.Join(dir, "model_trainer", "model.obj"), "GOBOBJ/1 x\n")

	out, logs, err := runArtifacts(t, "push", "-i", dir, "--dry-run")
	if err != nil {
		t.Fatalf("push --dry-run failed: %v", err)
	}
	if out != "" {
		t.Errorf("expected nothing on stdout, got %q", out)
	}
	for _, want := range []string{
		`"key":"artifacts/data_ingestion/train.csv"`,
		`"key":"artifacts/model_trainer/model.obj"`,
		`"uploaded":2`,
		`"dryRun":true`,
	} {
		if !strings.Contains(logs, want) {
			t.Errorf("expected %s in logs, got:\n%s", want, logs)
		}
	}
}

func TestPush_MissingBucket(t *testing.T) {
	_, _, err := runArtifacts(t, "push", "-i", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "missing bucket") {
		t.Errorf("expected missing bucket error, got %v", err)
	}
}

func TestPull_MissingBucket(t *testing.T) {
	_, _, err := runArtifacts(t, "pull", "-o", t.TempDir(), "artifacts/model_trainer/model.obj")
	if err == nil || !strings.Contains(err.Error(), "missing bucket") {
		t.Errorf("expected missing bucket error, got %v", err)
	}

	if _, _, err := runArtifacts(t, "pull"); err == nil {
		t.Error("expected error when no keys are given")
	}
}

func TestRoot_InvalidLogFormat(t *testing.T) {
	t.Setenv("VISA_LOG_FORMAT", "xml")
	path := filepath.Join(t.TempDir(), "model.yaml")
	writeFile(t, path, "a: 1\n")

	var out bytes.Buffer
	envFile, configFile = "", ""
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"yaml", "show", path})
	if err := rootCmd.Execute(); err == nil {
		t.Error("expected error for invalid log format")
	}
	if out.Len() != 0 {
		t.Errorf("command should not run, got %q", out.String())
	}
}
