package huffman

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// Node is a Huffman tree node. Leaves carry a symbol and its count; internal
// nodes carry the sum of their children's weights. A node owns its children
// exclusively, so a tree never shares or cycles.
type Node struct {
	Weight      uint32
	Symbol      byte
	Leaf        bool
	Left, Right *Node
}

// Tree is a Huffman tree. An empty input gives a Tree with a nil Root.
type Tree struct {
	Root *Node
}

// BuildTree repeatedly merges the two lightest nodes until one remains.
// The first node popped becomes the left child.
//
// A single distinct symbol is hung below a synthetic root as its left child,
// so every used symbol has a code at least one bit long.
func BuildTree(freq *FreqTable) (*Tree, error) {
	if freq.Total() > math.MaxUint32 {
		return nil, ErrTooLarge
	}

	q := &Queue{}
	for i, c := range freq {
		if c != 0 {
			q.Push(&Node{Weight: c, Symbol: byte(i), Leaf: true})
		}
	}

	switch q.Len() {
	case 0:
		return &Tree{}, nil
	case 1:
		leaf := q.Pop()
		return &Tree{Root: &Node{Weight: leaf.Weight, Left: leaf}}, nil
	}

	for q.Len() > 1 {
		n1 := q.Pop()
		n2 := q.Pop()
		q.Push(&Node{
			Weight: n1.Weight + n2.Weight,
			Left:   n1,
			Right:  n2,
		})
	}

	return &Tree{Root: q.Pop()}, nil
}

// postOrder calls visit on every node below and including root, children
// before parents, without recursion.
func postOrder(root *Node, visit func(*Node)) {
	var stack []*Node
	var last *Node

	n := root
	for n != nil || len(stack) > 0 {
		if n != nil {
			stack = append(stack, n)
			n = n.Left
			continue
		}

		top := stack[len(stack)-1]
		if top.Right != nil && top.Right != last {
			n = top.Right
			continue
		}

		stack = stack[:len(stack)-1]
		visit(top)
		last = top
	}
}

// Release unlinks every node of the tree, children first, and returns how
// many nodes were visited. The tree is empty afterwards.
func (t *Tree) Release() int {
	count := 0
	postOrder(t.Root, func(n *Node) {
		n.Left, n.Right = nil, nil
		count++
	})
	t.Root = nil
	return count
}

// TreeStats describes the shape of a tree.
type TreeStats struct {
	Leaves   int
	Internal int
	Height   int
}

func (t *Tree) Stats() TreeStats {
	var st TreeStats
	if t.Root == nil {
		return st
	}

	type frame struct {
		n     *Node
		depth int
	}
	stack := []frame{{t.Root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		st.Height = max(st.Height, f.depth)
		if f.n.Leaf {
			st.Leaves++
			continue
		}
		st.Internal++
		if f.n.Right != nil {
			stack = append(stack, frame{f.n.Right, f.depth + 1})
		}
		if f.n.Left != nil {
			stack = append(stack, frame{f.n.Left, f.depth + 1})
		}
	}
	return st
}

// Print draws the tree sideways: left subtrees above their parent, right
// subtrees below. Recursion depth is bounded by the tree height, at most 256.
func (t *Tree) Print(w io.Writer) {
	if t.Root == nil {
		fmt.Fprintln(w, "(empty)")
		return
	}
	printNode(w, t.Root, 0, 0)
}

func printNode(w io.Writer, n *Node, depth int, side int) {
	edge := "---"
	switch side {
	case 1:
		edge = "/--"
	case -1:
		edge = "\\--"
	}
	pad := strings.Repeat("    ", depth)

	if n.Leaf {
		fmt.Fprintf(w, "%s%s%q\n", pad, edge, n.Symbol)
		return
	}

	if n.Left != nil {
		printNode(w, n.Left, depth+1, 1)
	}
	if n.Weight > 0 {
		fmt.Fprintf(w, "%s%s<%d\n", pad, edge, n.Weight)
	} else {
		fmt.Fprintf(w, "%s%s<\n", pad, edge)
	}
	if n.Right != nil {
		printNode(w, n.Right, depth+1, -1)
	}
}
