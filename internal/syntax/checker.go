package syntax

import (
	"strings"

	"gopkg.microglot.org/rjson.go/internal/lang"
)

// elementKind resolves the type of a list element: dict, list, the terminal
// kind of a value node (STRING, NUMBER, BOOLEAN) or empty for an empty value.
func elementKind(n *lang.Node) (kind string, label string) {
	switch n.Label {
	case LabelDict, LabelList:
		return n.Label, n.Label
	}
	if len(n.Children) < 1 {
		return "", n.Label
	}
	label = n.Children[0].Label
	kind, _, _ = strings.Cut(label, ":")
	return kind, label
}

// CheckList compares every element of a finished list node against the kind
// of its first element. The first mismatch is logged as a Level A error and
// ends the check. Nodes that are not lists are consistent.
func CheckList(node *lang.Node, log *SemanticLog) bool {
	if node == nil || node.Label != LabelList {
		return true
	}
	var expected string
	first := true
	for _, child := range node.Children {
		if child.IsLeaf {
			continue
		}
		kind, label := elementKind(child)
		if first {
			expected = kind
			first = false
			continue
		}
		if kind != expected {
			log.Log(&SemanticError{
				Kind:     SemanticInconsistentList,
				Label:    label,
				Expected: expected,
			})
			return false
		}
	}
	return true
}

// CheckLists applies CheckList to every list in the tree, nested ones
// included. It reports whether all of them were consistent.
func CheckLists(root *lang.Node, log *SemanticLog) bool {
	ok := true
	lang.Walk(root, func(n *lang.Node, depth int) bool {
		if n.Label == LabelList && !n.IsLeaf {
			if !CheckList(n, log) {
				ok = false
			}
		}
		return true
	})
	return ok
}
