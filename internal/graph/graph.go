// Package graph resolves call sites against the symbol index into weighted
// call-graph edges.
package graph

import (
	"sort"

	"github.com/phobologic/callmap/internal/model"
)

// Resolve builds the call graph. A call site contributes to an edge only
// when it has an enclosing function (the caller) and its callee name is a
// key in the index. The match is exact string equality against declared
// names, ignoring scope and module boundaries; sites that match nothing are
// dropped silently. Weight counts the sites inside the caller's body that
// resolved to the callee. Edges come back sorted by caller, then callee.
func Resolve(records []*model.FileRecord, idx model.SymbolIndex) []model.CallEdge {
	type edgeKey struct{ caller, callee string }
	weights := make(map[edgeKey]int)

	for _, rec := range records {
		if rec == nil || !rec.Success {
			continue
		}
		for _, call := range rec.Calls {
			if call.Enclosing == "" {
				continue
			}
			if _, known := idx[call.Callee]; !known {
				continue
			}
			weights[edgeKey{call.Enclosing, call.Callee}]++
		}
	}

	edges := make([]model.CallEdge, 0, len(weights))
	for key, w := range weights {
		edges = append(edges, model.CallEdge{Caller: key.caller, Callee: key.callee, Weight: w})
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Caller != edges[j].Caller {
			return edges[i].Caller < edges[j].Caller
		}
		return edges[i].Callee < edges[j].Callee
	})

	return edges
}
