package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phobologic/callmap/internal/discover"
)

func writeTestFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func createSampleRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, dir, "util.py", `def helper():
    pass
`)
	writeTestFile(t, dir, "main.py", `def greet():
    helper()
    helper()
`)
	return dir
}

func TestScanCmdJSON(t *testing.T) {
	dir := createSampleRepo(t)

	cmd := newScanCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{dir})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasSuffix(out.String(), "\n") {
		t.Error("output should end with a newline")
	}

	var payload struct {
		Repo  string                     `json:"repo"`
		Root  string                     `json:"root"`
		Files map[string]json.RawMessage `json:"files"`
		Edges []struct {
			Caller string `json:"caller"`
			Callee string `json:"callee"`
			Weight int    `json:"weight"`
		} `json:"edges"`
	}
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out.String())
	}
	if payload.Repo == "" || payload.Root == "" {
		t.Errorf("missing repo/root: %+v", payload)
	}
	if len(payload.Files) != 2 {
		t.Errorf("expected 2 file entries, got %d", len(payload.Files))
	}
	if len(payload.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %+v", payload.Edges)
	}
	e := payload.Edges[0]
	if e.Caller != "greet" || e.Callee != "helper" || e.Weight != 2 {
		t.Errorf("edge = %+v, want greet->helper weight 2", e)
	}
}

func TestScanCmdPretty(t *testing.T) {
	dir := createSampleRepo(t)

	cmd := newScanCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--pretty", dir})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "\n  \"repo\"") {
		t.Errorf("expected indented output, got:\n%s", out.String())
	}
}

func TestScanCmdOutputFile(t *testing.T) {
	dir := createSampleRepo(t)
	path := filepath.Join(t.TempDir(), "out.json")

	cmd := newScanCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"-o", path, dir})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("stdout should be empty with -o, got %q", out.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !json.Valid(data) {
		t.Errorf("file is not valid JSON: %s", data)
	}
}

func TestScanCmdBadRoot(t *testing.T) {
	cmd := newScanCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing")})

	err := cmd.Execute()
	if !errors.Is(err, discover.ErrRootNotFound) {
		t.Errorf("expected ErrRootNotFound, got %v", err)
	}
}

func TestScanCmdBrokenFile(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "bad.py", "def broken(:\n")

	cmd := newScanCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{dir})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("a broken file must not abort the scan: %v", err)
	}
	if !strings.Contains(out.String(), `"success":false`) {
		t.Errorf("expected a failure record in output:\n%s", out.String())
	}
}
