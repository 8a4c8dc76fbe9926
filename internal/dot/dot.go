// Package dot renders analysis results as Graphviz DOT text.
package dot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/phobologic/callmap/internal/model"
)

// CallGraph renders the weighted call graph as a digraph. Nodes are emitted
// in sorted order; edges keep their resolver order and carry the weight as
// a label when it exceeds one.
func CallGraph(edges []model.CallEdge) string {
	var b strings.Builder
	b.WriteString("digraph {\n")
	b.WriteString("\trankdir=LR;\n")
	b.WriteString("\tlabel=\"Function Call Graph\";\n")
	b.WriteString("\tfontsize=16;\n")
	b.WriteString("\tnode [shape=box, style=\"rounded,filled\", fillcolor=lightblue];\n")

	nodes := make(map[string]struct{})
	for _, e := range edges {
		nodes[e.Caller] = struct{}{}
		nodes[e.Callee] = struct{}{}
	}
	for _, name := range sortedKeys(nodes) {
		fmt.Fprintf(&b, "\t%s;\n", quote(name))
	}

	for _, e := range edges {
		if e.Weight > 1 {
			fmt.Fprintf(&b, "\t%s -> %s [label=%s];\n", quote(e.Caller), quote(e.Callee), quote(fmt.Sprintf("%d", e.Weight)))
		} else {
			fmt.Fprintf(&b, "\t%s -> %s;\n", quote(e.Caller), quote(e.Callee))
		}
	}

	b.WriteString("}\n")
	return b.String()
}

// ClassHierarchy renders inheritance edges between the classes declared in
// files. Each class node previews up to three method names; an edge points
// from child to base and is emitted only when the base names a class
// declared somewhere in the results. Files contribute in path order.
func ClassHierarchy(files map[string]*model.FileRecord) string {
	var classes []model.Class
	for _, path := range sortedFilePaths(files) {
		rec := files[path]
		if !rec.Success {
			continue
		}
		classes = append(classes, rec.Classes...)
	}

	known := make(map[string]struct{}, len(classes))
	for _, cls := range classes {
		known[cls.Name] = struct{}{}
	}

	var b strings.Builder
	b.WriteString("digraph {\n")
	b.WriteString("\trankdir=BT;\n")
	b.WriteString("\tlabel=\"Class Inheritance Diagram\";\n")
	b.WriteString("\tfontsize=16;\n")
	b.WriteString("\tnode [shape=box, style=filled, fillcolor=lightgreen];\n")

	for _, cls := range classes {
		fmt.Fprintf(&b, "\t%s [label=%s];\n", quote(cls.Name), quoteLabel(classLabel(cls)))
	}

	for _, cls := range classes {
		for _, base := range cls.Bases {
			if _, ok := known[base]; ok {
				fmt.Fprintf(&b, "\t%s -> %s;\n", quote(cls.Name), quote(base))
			}
		}
	}

	b.WriteString("}\n")
	return b.String()
}

// classLabel builds the node label: the class name, then up to three
// methods, then a count of the rest. \n is a DOT line break.
func classLabel(cls model.Class) string {
	if len(cls.Methods) == 0 {
		return cls.Name
	}
	parts := []string{cls.Name, "---"}
	for i, m := range cls.Methods {
		if i == 3 {
			parts = append(parts, fmt.Sprintf("+ ... (%d more)", len(cls.Methods)-3))
			break
		}
		parts = append(parts, "+ "+m+"()")
	}
	return strings.Join(parts, `\n`)
}

// quote wraps s as a DOT identifier, escaping backslashes and quotes.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// quoteLabel wraps a label, escaping quotes only so \n line breaks survive.
func quoteLabel(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedFilePaths(files map[string]*model.FileRecord) []string {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
