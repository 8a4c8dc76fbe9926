package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFileRecordMarshalFailure(t *testing.T) {
	t.Parallel()

	rec := FileRecord{Path: "bad.py", Error: "syntax error: line 3"}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"success":false,"error":"syntax error: line 3"}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestFileRecordMarshalSuccess(t *testing.T) {
	t.Parallel()

	rec := FileRecord{
		Path:    "m.py",
		Success: true,
		Functions: []Function{
			{Name: "f", Line: 1, Params: []string{"x"}, Decorators: []string{}},
		},
		Classes: []Class{},
		Imports: []Import{},
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"success":true,"functions":[{"name":"f","lineno":1,"args":["x"],"decorators":[]}],"classes":[],"imports":[]}`
	if string(data) != want {
		t.Errorf("got  %s\nwant %s", data, want)
	}
}

func TestFileRecordMarshalNilSlices(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(FileRecord{Path: "m.py", Success: true})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"success":true,"functions":[],"classes":[],"imports":[]}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestFileRecordCallsNotSerialized(t *testing.T) {
	t.Parallel()

	rec := FileRecord{
		Path:    "m.py",
		Success: true,
		Calls:   []CallSite{{Callee: "g", Line: 2, Enclosing: "f"}},
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(data), "alls") || strings.Contains(string(data), "allee") {
		t.Errorf("call sites leaked into wire form: %s", data)
	}
}

func TestFunctionMarshalOptionalFields(t *testing.T) {
	t.Parallel()

	full := Function{
		Name:       "f",
		Line:       2,
		Params:     []string{},
		Decorators: []string{"cached"},
		Returns:    "int",
		Docstring:  "Does f.",
	}
	data, err := json.Marshal(full)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"name":"f","lineno":2,"args":[],"decorators":["cached"],"returns":"int","docstring":"Does f."}`
	if string(data) != want {
		t.Errorf("got  %s\nwant %s", data, want)
	}

	bare := Function{Name: "g", Line: 5, Params: []string{}, Decorators: []string{}}
	data, err = json.Marshal(bare)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(data), "returns") || strings.Contains(string(data), "docstring") {
		t.Errorf("empty optional fields should be omitted: %s", data)
	}
}

func TestClassMarshal(t *testing.T) {
	t.Parallel()

	cls := Class{Name: "C", Line: 3, Bases: []string{"Base"}, Methods: []string{"m"}}
	data, err := json.Marshal(cls)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"name":"C","lineno":3,"bases":["Base"],"methods":["m"]}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestImportMarshal(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Import{Module: "numpy", Alias: "np", Line: 1})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"module":"numpy","alias":"np","lineno":1}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}

	data, err = json.Marshal(Import{Module: "os", Line: 2})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(data), "alias") {
		t.Errorf("empty alias should be omitted: %s", data)
	}
}

func TestResultMarshal(t *testing.T) {
	t.Parallel()

	result := Result{
		Repo: "demo",
		Root: "/tmp/demo",
		Files: map[string]*FileRecord{
			"b.py": {Path: "b.py", Success: true},
			"a.py": {Path: "a.py", Success: true},
		},
		Edges: []CallEdge{{Caller: "f", Callee: "g", Weight: 2}},
		Index: SymbolIndex{"f": nil},
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	out := string(data)

	if !strings.Contains(out, `"repo":"demo"`) || !strings.Contains(out, `"root":"/tmp/demo"`) {
		t.Errorf("missing repo/root: %s", out)
	}
	if !strings.Contains(out, `{"caller":"f","callee":"g","weight":2}`) {
		t.Errorf("missing edge: %s", out)
	}
	if strings.Contains(out, "index") || strings.Contains(out, "Index") {
		t.Errorf("index should not be serialized: %s", out)
	}

	// Map keys come out sorted, which keeps reruns byte-identical.
	if strings.Index(out, `"a.py"`) > strings.Index(out, `"b.py"`) {
		t.Errorf("file keys not sorted: %s", out)
	}
}
