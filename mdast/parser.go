package mdast

import (
	"regexp"
	"strings"
)

var (
	headingRe   = regexp.MustCompile(`^(#{1,6})[ \t]+(.+)`)
	thematicRe  = regexp.MustCompile(`^(\*{3,}|-{3,}|_{3,})$`)
	listItemRe  = regexp.MustCompile(`^([ \t]*)([*+-]|\d+\.)[ \t]+(.+)`)
	quoteRe     = regexp.MustCompile(`^>[ \t]*(.*)`)
	fenceRe     = regexp.MustCompile("^```[ \t]*([a-zA-Z0-9_+-]*)[ \t]*(!raw)?$")
	tableRowRe  = regexp.MustCompile(`^\|(.+)\|[ \t]*$`)
	tableSepRe  = regexp.MustCompile(`^\|?[ \t]*:?-{1,}:?[ \t]*(\|[ \t]*:?-{1,}:?[ \t]*)*\|?[ \t]*$`)

	// inlineTokenRe recognises, in priority order: images, links, inline
	// code, bold (** then __), strike, highlight, italic, math, footnote
	// references, hardbreaks and raw HTML tags.
	inlineTokenRe = regexp.MustCompile(
		`(!\[.*?\]\(.*?\))` + // image
			`|(\[.*?\]\(.*?\))` + // link
			"|(`[^`]+`)" + // inline code
			`|(\*\*.+?\*\*)` + // bold
			`|(__.+?__)` + // bold (underscore form)
			`|(~~.+?~~)` + // strikethrough
			`|(==.+?==)` + // highlight
			`|(\*[^*\n]+?\*)` + // italic
			`|(\$[^$\n]+?\$)` + // inline math
			`|(\[\^[^\]]+\])` + // footnote reference
			`|(  \n)` + // hardbreak (two trailing spaces)
			`|(<[a-zA-Z/][^<>\n]*>)`, // raw html inline tag
	)
)

// ParseDocument parses src into a document tree rooted at NodeRoot. A
// trailing, unterminated code fence is represented as a NodeCodeBlock with
// Loading set to true.
func ParseDocument(src string) *Node {
	root := NewNode(NodeRoot)
	lines := strings.Split(src, "\n")

	var currentList *Node
	var listIndent string
	var inCode bool
	var codeLang string
	var codeRaw bool
	var codeBody strings.Builder

	var tableHeader []string
	var tableRows [][]string
	inTable := false

	flushTable := func() {
		if !inTable {
			return
		}
		table := NewNode(NodeTable)
		table.Header = cellsOf(tableHeader)
		for _, row := range tableRows {
			rowNode := NewNode(NodeTableRow)
			rowNode.Cells = cellsOf(row)
			table.Rows = append(table.Rows, rowNode)
		}
		root.AddChild(table)
		tableHeader = nil
		tableRows = nil
		inTable = false
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if m := fenceRe.FindStringSubmatch(trimmed); m != nil {
			flushTable()
			if inCode {
				node := NewNode(NodeCodeBlock)
				node.Code = strings.TrimSuffix(codeBody.String(), "\n")
				node.Lang = codeLang
				node.Raw = codeRaw
				node.Diff = codeLang == "diff" || codeLang == "patch"
				root.AddChild(node)
				codeBody.Reset()
				inCode = false
				codeLang = ""
				codeRaw = false
			} else {
				inCode = true
				codeLang = m[1]
				codeRaw = m[2] == "!raw"
			}
			continue
		}
		if inCode {
			codeBody.WriteString(line + "\n")
			continue
		}

		if tableRowRe.MatchString(trimmed) {
			cells := splitTableRow(trimmed)
			if !inTable {
				// a header row must be followed by a separator row, or
				// this is just a paragraph that happens to contain pipes.
				if i+1 < len(lines) && tableSepRe.MatchString(strings.TrimSpace(lines[i+1])) {
					tableHeader = cells
					inTable = true
					i++ // consume the separator row
					continue
				}
				node := NewNode(NodeParagraph)
				node.Children = parseInline(trimmed)
				root.AddChild(node)
				continue
			}
			tableRows = append(tableRows, cells)
			continue
		}
		if inTable {
			flushTable()
		}

		if m := listItemRe.FindStringSubmatch(line); m != nil {
			indent, marker, content := m[1], m[2], m[3]
			if currentList == nil || indent != listIndent {
				currentList = NewNode(NodeList)
				currentList.Ordered = isOrderedMarker(marker)
				listIndent = indent
				root.AddChild(currentList)
			}
			item := NewNode(NodeListItem)
			item.Children = parseInline(content)
			currentList.Items = append(currentList.Items, item)
			continue
		}
		if trimmed != "" {
			currentList = nil
		}

		if m := headingRe.FindStringSubmatch(line); m != nil {
			node := NewNode(NodeHeading)
			node.Level = len(m[1])
			node.Children = parseInline(m[2])
			root.AddChild(node)
			continue
		}

		if thematicRe.MatchString(trimmed) {
			root.AddChild(NewNode(NodeThematic))
			continue
		}

		if m := quoteRe.FindStringSubmatch(line); m != nil {
			node := NewNode(NodeQuote)
			node.Children = parseInline(m[1])
			root.AddChild(node)
			continue
		}

		if trimmed == "" {
			continue
		}

		node := NewNode(NodeParagraph)
		node.Children = parseInline(line)
		root.AddChild(node)
	}

	flushTable()

	if inCode {
		node := NewNode(NodeCodeBlock)
		node.Code = strings.TrimSuffix(codeBody.String(), "\n")
		node.Lang = codeLang
		node.Loading = true
		root.AddChild(node)
	}

	return root
}

func isOrderedMarker(marker string) bool {
	return marker != "*" && marker != "+" && marker != "-"
}

func splitTableRow(line string) []string {
	inner := strings.TrimSuffix(strings.TrimPrefix(line, "|"), "|")
	parts := strings.Split(inner, "|")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func cellsOf(texts []string) []*Node {
	cells := make([]*Node, len(texts))
	for i, t := range texts {
		cell := NewNode(NodeTableCell)
		cell.Children = parseInline(t)
		cells[i] = cell
	}
	return cells
}

// FindTrailingLoadingCodeBlock reports the document-order-last child of
// root if it is a NodeCodeBlock with Loading set, matching the "trailing
// open fence" transition the stream renderer watches for.
func FindTrailingLoadingCodeBlock(root *Node) (*Node, bool) {
	if root == nil || len(root.Children) == 0 {
		return nil, false
	}
	last := root.Children[len(root.Children)-1]
	if last.Type == NodeCodeBlock && last.Loading {
		return last, true
	}
	return nil, false
}

// parseInline tokenises text into inline nodes: images, links, inline
// code, the style wrappers, math, footnote references, hardbreaks, raw
// HTML, and plain text runs filling the gaps.
func parseInline(text string) []*Node {
	var nodes []*Node
	lastIndex := 0

	for _, match := range inlineTokenRe.FindAllStringIndex(text, -1) {
		start, end := match[0], match[1]
		if start > lastIndex {
			nodes = append(nodes, &Node{Type: NodeText, Text: text[lastIndex:start]})
		}
		nodes = append(nodes, parseToken(text[start:end]))
		lastIndex = end
	}
	if lastIndex < len(text) {
		nodes = append(nodes, &Node{Type: NodeText, Text: text[lastIndex:]})
	}
	return nodes
}

func parseToken(token string) *Node {
	switch {
	case strings.HasPrefix(token, "!["):
		return parseImage(token)
	case strings.HasPrefix(token, "["):
		if strings.HasPrefix(token, "[^") {
			return &Node{Type: NodeFootnoteRef, Text: strings.TrimSuffix(strings.TrimPrefix(token, "[^"), "]")}
		}
		return parseLink(token)
	case strings.HasPrefix(token, "`"):
		return &Node{Type: NodeInlineCode, Text: strings.Trim(token, "`")}
	case strings.HasPrefix(token, "**"):
		n := NewNode(NodeStrong)
		n.Children = parseInline(token[2 : len(token)-2])
		return n
	case strings.HasPrefix(token, "__"):
		n := NewNode(NodeStrong)
		n.Children = parseInline(token[2 : len(token)-2])
		return n
	case strings.HasPrefix(token, "~~"):
		n := NewNode(NodeStrike)
		n.Children = parseInline(token[2 : len(token)-2])
		return n
	case strings.HasPrefix(token, "=="):
		n := NewNode(NodeHighlight)
		n.Children = parseInline(token[2 : len(token)-2])
		return n
	case strings.HasPrefix(token, "*"):
		n := NewNode(NodeEmphasis)
		n.Children = parseInline(token[1 : len(token)-1])
		return n
	case strings.HasPrefix(token, "$"):
		return &Node{Type: NodeMathInline, Text: token[1 : len(token)-1]}
	case token == "  \n":
		return &Node{Type: NodeHardbreak}
	case strings.HasPrefix(token, "<"):
		return &Node{Type: NodeHTMLInline, Text: token}
	default:
		return &Node{Type: NodeText, Text: token}
	}
}

func parseImage(token string) *Node {
	alt, url := splitLinkLike(strings.TrimPrefix(token, "!"))
	return &Node{Type: NodeImage, Alt: alt, URL: url}
}

func parseLink(token string) *Node {
	label, url := splitLinkLike(token)
	n := NewNode(NodeLink)
	n.URL = url
	n.Children = parseInline(label)
	return n
}

func splitLinkLike(token string) (label, url string) {
	closeBracket := strings.Index(token, "]")
	if closeBracket < 0 {
		return token, ""
	}
	label = token[1:closeBracket]
	rest := token[closeBracket+1:]
	if strings.HasPrefix(rest, "(") && strings.HasSuffix(rest, ")") {
		url = rest[1 : len(rest)-1]
	}
	return label, url
}
