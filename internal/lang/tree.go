package lang

import (
	"fmt"
	"io"
	"strings"
)

// Node is a concrete parse tree node. Internal nodes carry a production name
// (value, dict, list, pair). Leaves carry either a punctuation label or a
// resolved terminal such as "STRING: abc".
type Node struct {
	Label    string
	Children []*Node
	IsLeaf   bool
}

func NewNode(label string) *Node {
	return &Node{Label: label}
}

func NewLeaf(label string) *Node {
	return &Node{Label: label, IsLeaf: true}
}

func (n *Node) AddChild(child *Node) {
	n.Children = append(n.Children, child)
}

const renderIndent = 3

// Walk visits the tree depth first in pre-order. Returning false from f skips
// the children of the visited node.
func Walk(n *Node, f func(n *Node, depth int) bool) {
	walk(n, 0, f)
}

func walk(n *Node, depth int, f func(*Node, int) bool) {
	if n == nil {
		return
	}
	if !f(n, depth) {
		return
	}
	for _, child := range n.Children {
		walk(child, depth+1, f)
	}
}

// Render writes one line per node, indented by three spaces per level.
func Render(w io.Writer, n *Node) error {
	var err error
	Walk(n, func(n *Node, depth int) bool {
		if err != nil {
			return false
		}
		_, err = fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", depth*renderIndent), n.Label)
		return true
	})
	return err
}

func (n *Node) String() string {
	var b strings.Builder
	_ = Render(&b, n)
	return b.String()
}
