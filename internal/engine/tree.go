package engine

import (
	"sort"

	"github.com/loomchat/loom/internal/models"
)

// TreeNode is one line in the display forest.
type TreeNode struct {
	Line     models.Line
	Depth    int
	Children []*TreeNode
}

// Tree is the rooted forest built from the flat line collection.
type Tree struct {
	Roots []*TreeNode

	// CycleLineIDs lists lines that were unreachable from any root because
	// their parent chain loops. They are appended to Roots anyway so the
	// navigation UI never hides data, and surfaced here so the caller can
	// warn about the corruption.
	CycleLineIDs []string
}

// BuildTree converts the snapshot's flat parent-pointer lines into a rooted
// forest ordered for display. A line whose parent id does not resolve is
// treated as a root. Siblings are ordered by creation time, ties by id.
func BuildTree(snap *models.Snapshot) *Tree {
	tree := &Tree{}
	if snap == nil || len(snap.Lines) == 0 {
		return tree
	}

	children := make(map[string][]models.Line, len(snap.Lines))
	var roots []models.Line
	for _, line := range snap.Lines {
		if line.ParentLineID == "" {
			roots = append(roots, line)
			continue
		}
		if _, ok := snap.Lines[line.ParentLineID]; !ok {
			roots = append(roots, line)
			continue
		}
		children[line.ParentLineID] = append(children[line.ParentLineID], line)
	}
	sortLines(roots)
	for _, siblings := range children {
		sortLines(siblings)
	}

	visited := make(map[string]struct{}, len(snap.Lines))
	var build func(line models.Line, depth int) *TreeNode
	build = func(line models.Line, depth int) *TreeNode {
		visited[line.ID] = struct{}{}
		node := &TreeNode{Line: line.Clone(), Depth: depth}
		for _, child := range children[line.ID] {
			if _, seen := visited[child.ID]; seen {
				continue
			}
			node.Children = append(node.Children, build(child, depth+1))
		}
		return node
	}

	for _, root := range roots {
		tree.Roots = append(tree.Roots, build(root, 0))
	}

	// Lines still unvisited sit on a parent cycle. Promote each to a root
	// rather than dropping it.
	var cyclic []models.Line
	for _, line := range snap.Lines {
		if _, seen := visited[line.ID]; !seen {
			cyclic = append(cyclic, line)
		}
	}
	sortLines(cyclic)
	for _, line := range cyclic {
		if _, seen := visited[line.ID]; seen {
			continue
		}
		tree.CycleLineIDs = append(tree.CycleLineIDs, line.ID)
		tree.Roots = append(tree.Roots, build(line, 0))
	}

	return tree
}

// Flatten returns the forest in pre-order, the order move/connect target
// pickers list lines in.
func (t *Tree) Flatten() []*TreeNode {
	if t == nil {
		return nil
	}
	var out []*TreeNode
	var walk func(node *TreeNode)
	walk = func(node *TreeNode) {
		if node == nil {
			return
		}
		out = append(out, node)
		for _, child := range node.Children {
			walk(child)
		}
	}
	for _, root := range t.Roots {
		walk(root)
	}
	return out
}

// DefaultExpanded computes the default expand/collapse state for the
// navigation tree: roots are expanded, and so is every line on the ancestry
// path of the currently focused line. Everything else starts collapsed.
func DefaultExpanded(snap *models.Snapshot, focusLineID string) map[string]bool {
	expanded := make(map[string]bool)
	if snap == nil {
		return expanded
	}
	for _, line := range snap.Lines {
		if line.ParentLineID == "" {
			expanded[line.ID] = true
			continue
		}
		if _, ok := snap.Lines[line.ParentLineID]; !ok {
			expanded[line.ID] = true
		}
	}
	if focusLineID != "" {
		chain, _ := Ancestry(snap, focusLineID)
		for _, id := range chain {
			expanded[id] = true
		}
		if _, ok := snap.Line(focusLineID); ok {
			expanded[focusLineID] = true
		}
	}
	return expanded
}

func sortLines(lines []models.Line) {
	sort.SliceStable(lines, func(i, j int) bool {
		if !lines[i].CreatedAt.Equal(lines[j].CreatedAt) {
			return lines[i].CreatedAt.Before(lines[j].CreatedAt)
		}
		return lines[i].ID < lines[j].ID
	})
}
