package huffman_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/atiedebee/huff/huffman"
)

const (
	randSeed   = 0x5a025ca11825a5e7
	iterations = 20
)

func freqOf(s string) *huffman.FreqTable {
	var f huffman.FreqTable
	for i := 0; i < len(s); i++ {
		f[s[i]]++
	}
	return &f
}

func TestBuildTreeTwoSymbols(t *testing.T) {
	tree, err := huffman.BuildTree(freqOf("aaab"))
	if err != nil {
		t.Fatal(err)
	}

	root := tree.Root
	if root.Leaf || root.Weight != 4 {
		t.Fatalf("root: leaf=%v weight=%d", root.Leaf, root.Weight)
	}
	if !root.Left.Leaf || root.Left.Symbol != 'b' || root.Left.Weight != 1 {
		t.Errorf("left child: %+v", *root.Left)
	}
	if !root.Right.Leaf || root.Right.Symbol != 'a' || root.Right.Weight != 3 {
		t.Errorf("right child: %+v", *root.Right)
	}
}

func TestBuildTreeSingleSymbol(t *testing.T) {
	tree, err := huffman.BuildTree(freqOf("zzzz"))
	if err != nil {
		t.Fatal(err)
	}

	root := tree.Root
	if root.Leaf {
		t.Fatal("single symbol tree has a leaf root")
	}
	if root.Right != nil {
		t.Error("synthetic root has a right child")
	}
	if root.Left == nil || !root.Left.Leaf || root.Left.Symbol != 'z' || root.Left.Weight != 4 {
		t.Fatalf("left child: %+v", root.Left)
	}
}

func TestBuildTreeEmpty(t *testing.T) {
	tree, err := huffman.BuildTree(&huffman.FreqTable{})
	if err != nil {
		t.Fatal(err)
	}
	if tree.Root != nil {
		t.Fatal("empty input gave a non-empty tree")
	}
	if st := tree.Stats(); st != (huffman.TreeStats{}) {
		t.Errorf("empty tree stats: %+v", st)
	}
}

func TestBuildTreeTooLarge(t *testing.T) {
	var f huffman.FreqTable
	f[0] = math.MaxUint32
	f[1] = 1
	if _, err := huffman.BuildTree(&f); !errors.Is(err, huffman.ErrTooLarge) {
		t.Fatalf("got %v, want ErrTooLarge", err)
	}
}

func TestTreeStatsAndRelease(t *testing.T) {
	cases := []struct {
		input    string
		leaves   int
		internal int
	}{
		{"zzzz", 1, 1},
		{"aaab", 2, 1},
		{"abracadabra", 5, 4},
	}

	for _, c := range cases {
		tree, err := huffman.BuildTree(freqOf(c.input))
		if err != nil {
			t.Fatal(err)
		}
		st := tree.Stats()
		if st.Leaves != c.leaves || st.Internal != c.internal {
			t.Errorf("%q: stats %+v, want %d leaves and %d internal", c.input, st, c.leaves, c.internal)
		}

		root := tree.Root
		if n := tree.Release(); n != c.leaves+c.internal {
			t.Errorf("%q: Release visited %d nodes, want %d", c.input, n, c.leaves+c.internal)
		}
		if tree.Root != nil || root.Left != nil || root.Right != nil {
			t.Errorf("%q: tree still linked after Release", c.input)
		}
	}
}

func TestTreePrint(t *testing.T) {
	tree, err := huffman.BuildTree(freqOf("aaab"))
	if err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	tree.Print(&sb)
	want := "    /--'b'\n" +
		"---<4\n" +
		"    \\--'a'\n"
	if sb.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", sb.String(), want)
	}
}
