// Package index aggregates per-file parse results into a repository-wide
// symbol index.
package index

import (
	"sort"

	"github.com/phobologic/callmap/internal/model"
)

// Build constructs the SymbolIndex from parse results. Only successful
// records contribute. Every function declaration keeps its own entry under
// its name; colliding names are retained side by side, never merged or
// dropped. Entries for a name are ordered by file path then line, with
// duplicate (file, line) pairs skipped, so the index is identical no matter
// what order parsing completed in.
func Build(records []*model.FileRecord) model.SymbolIndex {
	sorted := make([]*model.FileRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	type site struct {
		name string
		file string
		line int
	}
	seen := make(map[site]struct{})

	idx := make(model.SymbolIndex)
	for _, rec := range sorted {
		if rec == nil || !rec.Success {
			continue
		}
		for i := range rec.Functions {
			fn := &rec.Functions[i]
			s := site{fn.Name, rec.Path, fn.Line}
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			idx[fn.Name] = append(idx[fn.Name], model.IndexEntry{File: rec.Path, Fn: fn})
		}
	}

	for name := range idx {
		entries := idx[name]
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].File != entries[j].File {
				return entries[i].File < entries[j].File
			}
			return entries[i].Fn.Line < entries[j].Fn.Line
		})
	}

	return idx
}
