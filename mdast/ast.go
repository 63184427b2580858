// Package mdast parses streamed Markdown-like text into a tree of nodes
// that mdansi can pretty-print and stream.Renderer can inspect for
// in-progress code fences.
package mdast

// NodeType identifies the shape and meaning of a Node.
type NodeType string

const (
	NodeRoot       NodeType = "root"
	NodeParagraph  NodeType = "paragraph"
	NodeHeading    NodeType = "heading"
	NodeList       NodeType = "list"
	NodeListItem   NodeType = "list_item"
	NodeCodeBlock  NodeType = "code_block"
	NodeQuote      NodeType = "blockquote"
	NodeThematic   NodeType = "thematic_break"
	NodeTable      NodeType = "table"
	NodeTableRow   NodeType = "table_row"
	NodeTableCell  NodeType = "table_cell"

	// Inline node types.
	NodeText        NodeType = "text"
	NodeStrong      NodeType = "strong"
	NodeEmphasis    NodeType = "emphasis"
	NodeStrike      NodeType = "strikethrough"
	NodeHighlight   NodeType = "highlight"
	NodeInlineCode  NodeType = "inline_code"
	NodeLink        NodeType = "link"
	NodeImage       NodeType = "image"
	NodeInline      NodeType = "inline"
	NodeHardbreak   NodeType = "hardbreak"
	NodeMathInline  NodeType = "math_inline"
	NodeFootnoteRef NodeType = "footnote_reference"
	NodeFootnoteDef NodeType = "footnote_anchor"
	NodeReference   NodeType = "reference"
	NodeHTMLInline  NodeType = "html_inline"
)

// Node is a single element of the parsed document tree. Block containers
// expose their children through whichever of Children/Items/Rows/Cells/
// Header applies to their NodeType; leaf and inline nodes use Text (and,
// for code blocks, Lang/Code/Loading/Diff/Raw).
type Node struct {
	Type NodeType

	// Text holds literal inline text (text, inline code, math, footnote
	// label, raw HTML). Links and images keep their href in URL.
	Text string

	// Level is the heading level (1-6) for NodeHeading.
	Level int

	// Code block fields.
	Lang    string
	Code    string
	Loading bool
	Diff    bool
	Raw     bool

	// Link/image fields.
	URL string
	Alt string

	// Ordered marks NodeList as numbered rather than bulleted.
	Ordered bool

	// Children holds generic block/inline children (paragraph, heading,
	// blockquote, emphasis-like inline wrappers, root).
	Children []*Node

	// Items holds list items for NodeList.
	Items []*Node

	// Rows holds body rows for NodeTable.
	Rows []*Node

	// Cells holds cells for NodeTableRow.
	Cells []*Node

	// Header holds the header row's cells for NodeTable.
	Header []*Node
}

// NewNode constructs a Node of the given type.
func NewNode(t NodeType) *Node {
	return &Node{Type: t}
}

// AddChild appends c to n.Children and returns n for chaining.
func (n *Node) AddChild(c *Node) *Node {
	n.Children = append(n.Children, c)
	return n
}
