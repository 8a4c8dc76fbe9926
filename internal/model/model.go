// Package model defines core data structures for callmap.
package model

import "encoding/json"

// Function represents a single function or method definition. Methods and
// nested functions are recorded as ordinary functions under their
// unqualified name.
type Function struct {
	Name       string   `json:"name"`
	Line       int      `json:"lineno"`
	Params     []string `json:"args"`
	Decorators []string `json:"decorators"`
	Returns    string   `json:"returns,omitempty"`
	Docstring  string   `json:"docstring,omitempty"`
}

// Class represents a single class definition. Methods lists the unqualified
// names of function definitions that are direct children of the class body.
type Class struct {
	Name      string   `json:"name"`
	Line      int      `json:"lineno"`
	Bases     []string `json:"bases"`
	Methods   []string `json:"methods"`
	Docstring string   `json:"docstring,omitempty"`
}

// Import represents one imported name. For "from m import n" the module
// field holds "m.n".
type Import struct {
	Module string `json:"module"`
	Alias  string `json:"alias,omitempty"`
	Line   int    `json:"lineno"`
}

// CallSite is a call expression whose callee reduced to a dotted name.
// Enclosing is the name of the nearest enclosing function definition, or ""
// for calls at module or class-body level. Call sites are resolver input and
// are never serialized.
type CallSite struct {
	Callee    string
	Line      int
	Enclosing string
}

// FileRecord holds the parse outcome for one source file. Exactly one of
// the two shapes is populated: Error for failures, the declaration and
// import slices for successes.
type FileRecord struct {
	Path      string
	Success   bool
	Error     string
	Functions []Function
	Classes   []Class
	Imports   []Import
	Calls     []CallSite
}

// MarshalJSON emits the wire form: failures carry only success and error,
// successes carry the extracted declarations and imports with empty slices
// rendered as [] rather than null.
func (r FileRecord) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}{false, r.Error})
	}
	fns, classes, imports := r.Functions, r.Classes, r.Imports
	if fns == nil {
		fns = []Function{}
	}
	if classes == nil {
		classes = []Class{}
	}
	if imports == nil {
		imports = []Import{}
	}
	return json.Marshal(struct {
		Success   bool       `json:"success"`
		Functions []Function `json:"functions"`
		Classes   []Class    `json:"classes"`
		Imports   []Import   `json:"imports"`
	}{true, fns, classes, imports})
}

// IndexEntry locates one function declaration in the repository.
type IndexEntry struct {
	File string
	Fn   *Function
}

// SymbolIndex maps a declared function name to every location declaring it,
// ordered by file path then line. Names declared in several places keep one
// entry per declaration.
type SymbolIndex map[string][]IndexEntry

// CallEdge is a weighted directed edge in the call graph: Weight counts the
// call sites inside Caller's body that resolved to Callee.
type CallEdge struct {
	Caller string `json:"caller"`
	Callee string `json:"callee"`
	Weight int    `json:"weight"`
}

// Result is the complete analysis output, ready for serialization. Index is
// intermediate data consumed by the resolver and is not part of the wire
// format.
type Result struct {
	Repo  string                 `json:"repo"`
	Root  string                 `json:"root"`
	Files map[string]*FileRecord `json:"files"`
	Edges []CallEdge             `json:"edges"`
	Index SymbolIndex            `json:"-"`
}
