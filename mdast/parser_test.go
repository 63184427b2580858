package mdast

import "testing"

func TestParseHeading(t *testing.T) {
	root := ParseDocument("## Title\n")
	if len(root.Children) != 1 {
		t.Fatalf("got %d children, want 1", len(root.Children))
	}
	h := root.Children[0]
	if h.Type != NodeHeading || h.Level != 2 {
		t.Fatalf("got %+v, want heading level 2", h)
	}
}

func TestParseCodeFenceComplete(t *testing.T) {
	root := ParseDocument("```go\nfmt.Println(1)\n```\n")
	if len(root.Children) != 1 {
		t.Fatalf("got %d children, want 1", len(root.Children))
	}
	cb := root.Children[0]
	if cb.Type != NodeCodeBlock || cb.Lang != "go" || cb.Loading {
		t.Fatalf("got %+v", cb)
	}
	if cb.Code != "fmt.Println(1)" {
		t.Fatalf("code = %q", cb.Code)
	}
}

func TestParseTrailingOpenFenceIsLoading(t *testing.T) {
	root := ParseDocument("intro\n\n```python\nprint(1)\n")
	block, ok := FindTrailingLoadingCodeBlock(root)
	if !ok {
		t.Fatalf("expected a trailing loading code block")
	}
	if block.Lang != "python" || !block.Loading {
		t.Fatalf("got %+v", block)
	}
}

func TestParseDiffLanguageSetsDiffFlag(t *testing.T) {
	root := ParseDocument("```diff\n+added\n-removed\n```\n")
	cb := root.Children[0]
	if !cb.Diff {
		t.Fatalf("expected Diff flag set for diff-language fence")
	}
}

func TestParseListItemsGrouped(t *testing.T) {
	root := ParseDocument("- one\n- two\n- three\n")
	if len(root.Children) != 1 || root.Children[0].Type != NodeList {
		t.Fatalf("got %+v, want single list", root.Children)
	}
	if len(root.Children[0].Items) != 3 {
		t.Fatalf("got %d items, want 3", len(root.Children[0].Items))
	}
}

func TestParseOrderedList(t *testing.T) {
	root := ParseDocument("1. a\n2. b\n")
	if !root.Children[0].Ordered {
		t.Fatalf("expected ordered list")
	}
}

func TestParseTableWithSeparator(t *testing.T) {
	root := ParseDocument("| A | B |\n| - | - |\n| 1 | 2 |\n")
	if len(root.Children) != 1 || root.Children[0].Type != NodeTable {
		t.Fatalf("got %+v, want single table", root.Children)
	}
	table := root.Children[0]
	if len(table.Header) != 2 || len(table.Rows) != 1 {
		t.Fatalf("got %+v", table)
	}
}

func TestParsePipeRowWithoutSeparatorIsParagraph(t *testing.T) {
	root := ParseDocument("| not a table |\n")
	if root.Children[0].Type != NodeParagraph {
		t.Fatalf("got %+v, want paragraph", root.Children[0])
	}
}

func TestParseInlineStyles(t *testing.T) {
	nodes := parseInline("**bold** and *em* and ~~gone~~ and `code`")
	var types []NodeType
	for _, n := range nodes {
		types = append(types, n.Type)
	}
	want := []NodeType{NodeStrong, NodeText, NodeEmphasis, NodeText, NodeStrike, NodeText, NodeInlineCode}
	if len(types) != len(want) {
		t.Fatalf("got %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("at %d: got %v, want %v (full: %v)", i, types[i], want[i], types)
		}
	}
}

func TestParseLinkAndImage(t *testing.T) {
	nodes := parseInline("[text](http://x) and ![alt](http://y)")
	if nodes[0].Type != NodeLink || nodes[0].URL != "http://x" {
		t.Fatalf("got %+v", nodes[0])
	}
	var img *Node
	for _, n := range nodes {
		if n.Type == NodeImage {
			img = n
		}
	}
	if img == nil || img.URL != "http://y" || img.Alt != "alt" {
		t.Fatalf("got image %+v", img)
	}
}

func TestFindTrailingLoadingCodeBlockNoneWhenClosed(t *testing.T) {
	root := ParseDocument("```go\nx\n```\n")
	if _, ok := FindTrailingLoadingCodeBlock(root); ok {
		t.Fatalf("expected no loading block for a closed fence")
	}
}

func TestFindTrailingLoadingCodeBlockEmptyDoc(t *testing.T) {
	root := ParseDocument("")
	if _, ok := FindTrailingLoadingCodeBlock(root); ok {
		t.Fatalf("expected no loading block for empty document")
	}
}
