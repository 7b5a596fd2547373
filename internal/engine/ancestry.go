// Package engine implements the branching-timeline engine: ancestry
// resolution over the line graph, line tree construction, chronological
// timeline composition, filtering, branch-point location, and cycle-safe
// validation of line mutations.
//
// Every operation is a deterministic function over an immutable snapshot.
// The engine never mutates its inputs; mutations derive a new snapshot for
// the caller to persist.
package engine

import (
	"github.com/loomchat/loom/internal/models"
)

// Ancestry returns the ancestor chain of a line, root-first, excluding the
// line itself. An unknown line id yields an empty chain.
//
// The walk keeps a visited set: if a line id reappears the walk stops with
// the partial chain computed so far and reports the cycle through the
// second return value. A corrupt parent chain must never loop forever, and
// must never be silently papered over either.
func Ancestry(snap *models.Snapshot, lineID string) ([]string, bool) {
	if snap == nil || lineID == "" {
		return nil, false
	}
	line, ok := snap.Line(lineID)
	if !ok {
		return nil, false
	}

	visited := map[string]struct{}{lineID: {}}
	var chain []string

	parentID := line.ParentLineID
	for parentID != "" {
		if _, seen := visited[parentID]; seen {
			reverse(chain)
			return chain, true
		}
		parent, ok := snap.Line(parentID)
		if !ok {
			// Dangling parent pointer: the chain ends here. Not a cycle.
			break
		}
		visited[parentID] = struct{}{}
		chain = append(chain, parentID)
		parentID = parent.ParentLineID
	}

	reverse(chain)
	return chain, false
}

// WouldCreateCycle reports whether attaching lineID under proposedParentID
// would close a loop in the line graph: either the two are the same line,
// or lineID is already an ancestor of the proposed parent.
func WouldCreateCycle(snap *models.Snapshot, lineID, proposedParentID string) bool {
	if lineID == "" || proposedParentID == "" {
		return false
	}
	if lineID == proposedParentID {
		return true
	}
	chain, cyclic := Ancestry(snap, proposedParentID)
	if cyclic {
		// The graph is already corrupt above the proposed parent; refuse
		// to attach anything into it.
		return true
	}
	for _, ancestorID := range chain {
		if ancestorID == lineID {
			return true
		}
	}
	return false
}

func reverse(ids []string) {
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
}
