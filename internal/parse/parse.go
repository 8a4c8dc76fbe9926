// Package parse turns Python source files into structural records using
// tree-sitter.
package parse

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/phobologic/callmap/internal/model"
)

// DefaultMaxFileSize bounds how large a file the parser accepts. Larger
// files become failure records rather than stalling the scan.
const DefaultMaxFileSize = 1_000_000

// Parser turns Python source into FileRecords. Each Parser owns one
// tree-sitter parser, which is not safe for concurrent use: give every
// worker goroutine its own Parser.
type Parser struct {
	parser  *sitter.Parser
	maxSize int
}

// New returns a Parser. maxFileSize <= 0 selects DefaultMaxFileSize.
func New(maxFileSize int) *Parser {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Parser{parser: p, maxSize: maxFileSize}
}

// File reads and parses the file at root/rel. Read and parse problems are
// recorded on the result, never returned as errors; the error return is
// reserved for context cancellation.
func (p *Parser) File(ctx context.Context, root, rel string) (*model.FileRecord, error) {
	src, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return failure(rel, fmt.Sprintf("read error: %v", err)), nil
	}
	return p.Source(ctx, rel, src)
}

// Source parses src as Python and extracts function and class declarations,
// call sites, and imports via a full tree traversal.
func (p *Parser) Source(ctx context.Context, rel string, src []byte) (*model.FileRecord, error) {
	if len(src) > p.maxSize {
		return failure(rel, fmt.Sprintf("parse error: file exceeds %d bytes", p.maxSize)), nil
	}
	if !utf8.Valid(src) {
		return failure(rel, "parse error: source is not valid UTF-8"), nil
	}

	tree, err := p.parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rel, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		if ln := firstErrorLine(root); ln > 0 {
			return failure(rel, fmt.Sprintf("syntax error: line %d", ln)), nil
		}
		return failure(rel, "syntax error"), nil
	}

	rec := &model.FileRecord{
		Path:      rel,
		Success:   true,
		Functions: []model.Function{},
		Classes:   []model.Class{},
		Imports:   []model.Import{},
	}
	e := &extractor{src: src, rec: rec}
	e.walkChildren(root, "")
	return rec, nil
}

func failure(path, msg string) *model.FileRecord {
	return &model.FileRecord{Path: path, Error: msg}
}

// nodeKind classifies the node types the extractor dispatches on; every
// other type is nodeOther and is only recursed into.
type nodeKind int

const (
	nodeOther nodeKind = iota
	nodeFunctionDef
	nodeClassDef
	nodeDecorated
	nodeCall
	nodeImport
	nodeImportFrom
)

func kindOf(n *sitter.Node) nodeKind {
	switch n.Type() {
	case "function_definition":
		return nodeFunctionDef
	case "class_definition":
		return nodeClassDef
	case "decorated_definition":
		return nodeDecorated
	case "call":
		return nodeCall
	case "import_statement":
		return nodeImport
	case "import_from_statement":
		return nodeImportFrom
	default:
		return nodeOther
	}
}

// calleeKind classifies the expression shapes the dotted-name rule accepts.
type calleeKind int

const (
	calleeOther calleeKind = iota
	calleeIdentifier
	calleeAttribute
	calleeCall
)

func calleeKindOf(n *sitter.Node) calleeKind {
	switch n.Type() {
	case "identifier":
		return calleeIdentifier
	case "attribute":
		return calleeAttribute
	case "call":
		return calleeCall
	default:
		return calleeOther
	}
}

// extractor accumulates one file's record during a single traversal.
type extractor struct {
	src []byte
	rec *model.FileRecord
}

// walk visits n and its subtree. enclosing is the name of the nearest
// function definition above n; call sites carry it so the resolver can
// attribute them to their caller.
func (e *extractor) walk(n *sitter.Node, enclosing string) {
	switch kindOf(n) {
	case nodeFunctionDef:
		fn := e.function(n, nil)
		e.rec.Functions = append(e.rec.Functions, fn)
		e.walkChildren(n, fn.Name)
	case nodeClassDef:
		e.rec.Classes = append(e.rec.Classes, e.class(n))
		e.walkChildren(n, enclosing)
	case nodeDecorated:
		e.decorated(n, enclosing)
	case nodeCall:
		fn := n.ChildByFieldName("function")
		if fn == nil && n.ChildCount() > 0 {
			fn = n.Child(0)
		}
		if fn != nil {
			if name, ok := e.dottedName(fn); ok {
				e.rec.Calls = append(e.rec.Calls, model.CallSite{
					Callee:    name,
					Line:      line(n),
					Enclosing: enclosing,
				})
			}
		}
		e.walkChildren(n, enclosing)
	case nodeImport:
		e.importStatement(n)
	case nodeImportFrom:
		e.importFrom(n)
	case nodeOther:
		e.walkChildren(n, enclosing)
	}
}

func (e *extractor) walkChildren(n *sitter.Node, enclosing string) {
	for i := 0; i < int(n.ChildCount()); i++ {
		e.walk(n.Child(i), enclosing)
	}
}

// decorated handles a decorated_definition: decorator names attach to the
// wrapped function, decorator expressions are still walked for call sites
// (they execute in the surrounding scope, so enclosing stays unchanged),
// and decorated classes keep no decorator metadata.
func (e *extractor) decorated(n *sitter.Node, enclosing string) {
	var decorators []string
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() != "decorator" {
			continue
		}
		expr := child.NamedChild(0)
		if expr == nil {
			continue
		}
		if name, ok := e.dottedName(expr); ok {
			decorators = append(decorators, name)
		}
		e.walk(expr, enclosing)
	}

	def := wrappedDefinition(n)
	if def == nil {
		return
	}
	switch kindOf(def) {
	case nodeFunctionDef:
		fn := e.function(def, decorators)
		e.rec.Functions = append(e.rec.Functions, fn)
		e.walkChildren(def, fn.Name)
	case nodeClassDef:
		e.rec.Classes = append(e.rec.Classes, e.class(def))
		e.walkChildren(def, enclosing)
	}
}

// wrappedDefinition returns the function or class definition inside a
// decorated_definition.
func wrappedDefinition(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch kindOf(child) {
		case nodeFunctionDef, nodeClassDef:
			return child
		}
	}
	return nil
}

func (e *extractor) function(n *sitter.Node, decorators []string) model.Function {
	if decorators == nil {
		decorators = []string{}
	}
	fn := model.Function{
		Line:       line(n),
		Params:     []string{},
		Decorators: decorators,
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "identifier":
			fn.Name = e.text(child)
		case "parameters":
			fn.Params = e.params(child)
		case "type":
			if inner := child.NamedChild(0); inner != nil {
				if name, ok := e.dottedName(inner); ok {
					fn.Returns = name
				}
			}
		case "block":
			fn.Docstring = e.docstring(child)
		}
	}
	return fn
}

// params returns positional parameter names in declaration order. A splat
// or bare * ends the positional section; everything after it is
// keyword-only and excluded.
func (e *extractor) params(n *sitter.Node) []string {
	names := []string{}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "identifier":
			names = append(names, e.text(child))
		case "default_parameter", "typed_default_parameter":
			if id := firstIdentifier(child); id != nil {
				names = append(names, e.text(id))
			}
		case "typed_parameter":
			inner := child.Child(0)
			if inner == nil || inner.Type() != "identifier" {
				return names
			}
			names = append(names, e.text(inner))
		case "list_splat_pattern", "dictionary_splat_pattern", "keyword_separator":
			return names
		}
	}
	return names
}

func firstIdentifier(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child.Type() == "identifier" {
			return child
		}
	}
	return nil
}

func (e *extractor) class(n *sitter.Node) model.Class {
	cls := model.Class{
		Line:    line(n),
		Bases:   []string{},
		Methods: []string{},
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "identifier":
			cls.Name = e.text(child)
		case "argument_list":
			cls.Bases = e.bases(child)
		case "block":
			cls.Docstring = e.docstring(child)
			cls.Methods = e.methods(child)
		}
	}
	return cls
}

// bases resolves positional base-class expressions to dotted names in
// writing order. Keyword arguments (metaclass=...) and shapes the rule
// rejects (subscripts like Generic[T]) are skipped.
func (e *extractor) bases(n *sitter.Node) []string {
	bases := []string{}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		arg := n.NamedChild(i)
		if arg.Type() == "keyword_argument" {
			continue
		}
		if name, ok := e.dottedName(arg); ok {
			bases = append(bases, name)
		}
	}
	return bases
}

// methods lists the unqualified names of function definitions that are
// direct children of the class body, decorated ones included.
func (e *extractor) methods(block *sitter.Node) []string {
	methods := []string{}
	for i := 0; i < int(block.ChildCount()); i++ {
		def := block.Child(i)
		if kindOf(def) == nodeDecorated {
			def = wrappedDefinition(def)
			if def == nil {
				continue
			}
		}
		if kindOf(def) != nodeFunctionDef {
			continue
		}
		if id := firstIdentifier(def); id != nil {
			methods = append(methods, e.text(id))
		}
	}
	return methods
}

// docstring returns the content of the block's first statement when that
// statement is a bare string literal. Comments are not statements and are
// skipped over.
func (e *extractor) docstring(block *sitter.Node) string {
	var first *sitter.Node
	for i := 0; i < int(block.ChildCount()); i++ {
		child := block.Child(i)
		if child.Type() == "comment" {
			continue
		}
		first = child
		break
	}
	if first == nil || first.Type() != "expression_statement" || first.ChildCount() == 0 {
		return ""
	}
	str := first.Child(0)
	if str.Type() != "string" {
		return ""
	}
	return stringContent(e.text(str))
}

// stringContent strips any prefix letters (r, b, u, f) and the surrounding
// quotes from a string literal. Escapes are left as written.
func stringContent(raw string) string {
	i := 0
	for i < len(raw) && raw[i] != '"' && raw[i] != '\'' {
		i++
	}
	raw = raw[i:]
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(raw, q) {
			raw = strings.TrimPrefix(raw, q)
			raw = strings.TrimSuffix(raw, q)
			break
		}
	}
	return raw
}

// importStatement records "import a.b" and "import a.b as c" forms.
func (e *extractor) importStatement(n *sitter.Node) {
	ln := line(n)
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "dotted_name":
			e.addImport(e.text(child), "", ln)
		case "aliased_import":
			name, alias := e.aliasedImport(child)
			if name != "" {
				e.addImport(name, alias, ln)
			}
		}
	}
}

// importFrom records "from m import a, b as c" forms as one entry per
// imported name, each under "m." + name. Relative imports keep only the
// named module part.
func (e *extractor) importFrom(n *sitter.Node) {
	module := ""
	sawImport := false
	ln := line(n)
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "import":
			sawImport = true
		case "relative_import":
			for j := 0; j < int(child.ChildCount()); j++ {
				if gc := child.Child(j); gc.Type() == "dotted_name" {
					module = e.text(gc)
				}
			}
		case "dotted_name":
			if !sawImport {
				module = e.text(child)
			} else {
				e.addImport(module+"."+e.text(child), "", ln)
			}
		case "aliased_import":
			name, alias := e.aliasedImport(child)
			if name != "" {
				e.addImport(module+"."+name, alias, ln)
			}
		case "wildcard_import":
			e.addImport(module+".*", "", ln)
		}
	}
}

func (e *extractor) aliasedImport(n *sitter.Node) (name, alias string) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "dotted_name":
			name = e.text(child)
		case "identifier":
			alias = e.text(child)
		}
	}
	return name, alias
}

func (e *extractor) addImport(module, alias string, line int) {
	e.rec.Imports = append(e.rec.Imports, model.Import{Module: module, Alias: alias, Line: line})
}

// dottedName reduces an expression to a dotted name: an identifier is
// itself; E.attr is resolve(E)+"."+attr when E resolves, else attr alone; a
// call resolves through its own callee. Any other shape has no name form
// and reports ok=false.
func (e *extractor) dottedName(n *sitter.Node) (string, bool) {
	switch calleeKindOf(n) {
	case calleeIdentifier:
		return e.text(n), true
	case calleeAttribute:
		attr := n.ChildByFieldName("attribute")
		if attr == nil {
			return "", false
		}
		name := e.text(attr)
		if obj := n.ChildByFieldName("object"); obj != nil {
			if base, ok := e.dottedName(obj); ok {
				return base + "." + name, true
			}
		}
		return name, true
	case calleeCall:
		fn := n.ChildByFieldName("function")
		if fn == nil {
			return "", false
		}
		return e.dottedName(fn)
	case calleeOther:
		return "", false
	}
	return "", false
}

func (e *extractor) text(n *sitter.Node) string {
	return string(e.src[n.StartByte():n.EndByte()])
}

func line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

// firstErrorLine finds the line of the first error node, or 0 when the
// recovery tree carries no explicit error node.
func firstErrorLine(n *sitter.Node) int {
	if n.Type() == "ERROR" {
		return line(n)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if ln := firstErrorLine(n.Child(i)); ln > 0 {
			return ln
		}
	}
	return 0
}
