package mdansi

import (
	"strconv"
	"strings"

	"streamterm/ansi"
	"streamterm/mdast"
)

// HighlightFunc synchronously returns ANSI-highlighted text for code
// written in lang, plus whether highlighted text is available (false when
// it isn't yet, e.g. an async highlight is still pending, or highlighting
// failed); Render then writes the code unstyled. It is never called for a
// still-loading code block.
type HighlightFunc func(code, lang string) (text string, ok bool)

// Render walks root and produces its ANSI-styled text. width sets the
// length of thematic-break rules (never fewer than 40 cells); table
// columns are sized to their widest cell and are not bounded by width.
// highlightCode may be nil. The result always ends in exactly one
// newline, even for an empty document.
func Render(root *mdast.Node, theme Theme, colorEnabled bool, width int, highlightCode HighlightFunc) string {
	r := &renderer{theme: theme, color: colorEnabled, width: width, highlight: highlightCode}
	var b strings.Builder
	for _, child := range root.Children {
		r.block(&b, child)
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

type renderer struct {
	theme     Theme
	color     bool
	width     int
	highlight HighlightFunc
}

func (r *renderer) wrap(seq, text string) string {
	if !r.color || seq == "" {
		return text
	}
	return styleLines(seq, text)
}

// styleLines closes and reopens seq around every embedded newline so a
// styled span can't bleed past the end of a shorter line.
func styleLines(seq, text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = seq + l + reset
	}
	return strings.Join(lines, "\n")
}

func (r *renderer) block(b *strings.Builder, n *mdast.Node) {
	switch n.Type {
	case mdast.NodeHeading:
		r.heading(b, n)
	case mdast.NodeParagraph:
		b.WriteString(r.inlines(n.Children))
		b.WriteString("\n")
	case mdast.NodeList:
		r.list(b, n)
	case mdast.NodeCodeBlock:
		r.codeBlock(b, n)
	case mdast.NodeQuote:
		b.WriteString(r.wrap(r.theme.Quote, "> "+r.inlines(n.Children)))
		b.WriteString("\n")
	case mdast.NodeThematic:
		b.WriteString(r.wrap(r.theme.ThematicBreak, strings.Repeat("─", maxInt(r.width, 40))))
		b.WriteString("\n")
	case mdast.NodeTable:
		r.table(b, n)
	default:
		b.WriteString(r.inlines(n.Children))
		b.WriteString("\n")
	}
}

func (r *renderer) heading(b *strings.Builder, n *mdast.Node) {
	seq := r.theme.HeadingRest
	switch n.Level {
	case 1:
		seq = r.theme.Heading1
	case 2:
		seq = r.theme.Heading2
	}
	b.WriteString(r.wrap(seq, r.inlines(n.Children)))
	b.WriteString("\n")
}

func (r *renderer) list(b *strings.Builder, n *mdast.Node) {
	for i, item := range n.Items {
		marker := "- "
		if n.Ordered {
			marker = strconv.Itoa(i+1) + ". "
		}
		b.WriteString(marker)
		b.WriteString(r.inlines(item.Children))
		b.WriteString("\n")
	}
}

func (r *renderer) codeBlock(b *strings.Builder, n *mdast.Node) {
	b.WriteString(r.wrap(r.theme.ThematicBreak, "```"+n.Lang))
	b.WriteString("\n")
	body := n.Code
	switch {
	case n.Loading:
		// the streaming tail renders raw until its fence closes; it never
		// goes through the highlighter.
		b.WriteString(body)
	case n.Diff:
		b.WriteString(r.diffBody(body))
	case r.highlight != nil:
		if text, ok := r.highlight(body, n.Lang); ok {
			b.WriteString(text)
		} else {
			b.WriteString(body)
		}
	default:
		b.WriteString(body)
	}
	if body != "" {
		b.WriteString("\n")
	}
	if !n.Loading {
		b.WriteString(r.wrap(r.theme.ThematicBreak, "```"))
		b.WriteString("\n")
	}
}

func (r *renderer) diffBody(body string) string {
	lines := strings.Split(body, "\n")
	for i, l := range lines {
		switch {
		case strings.HasPrefix(l, "+"):
			lines[i] = r.wrap(r.theme.DiffAdd, l)
		case strings.HasPrefix(l, "-"):
			lines[i] = r.wrap(r.theme.DiffDel, l)
		case strings.HasPrefix(l, "@@"):
			lines[i] = r.wrap(r.theme.DiffHunk, l)
		}
	}
	return strings.Join(lines, "\n")
}

func (r *renderer) table(b *strings.Builder, n *mdast.Node) {
	widths := make([]int, len(n.Header))
	headerText := make([]string, len(n.Header))
	for i, cell := range n.Header {
		headerText[i] = r.inlines(cell.Children)
		widths[i] = ansi.VisibleWidth(headerText[i])
	}
	rowTexts := make([][]string, len(n.Rows))
	for ri, row := range n.Rows {
		rowTexts[ri] = make([]string, len(row.Cells))
		for ci, cell := range row.Cells {
			text := r.inlines(cell.Children)
			rowTexts[ri][ci] = text
			if ci < len(widths) && ansi.VisibleWidth(text) > widths[ci] {
				widths[ci] = ansi.VisibleWidth(text)
			}
		}
	}

	r.writeTableRow(b, headerText, widths)
	b.WriteString(r.wrap(r.theme.TableBorder, tableSeparator(widths)))
	b.WriteString("\n")
	for _, row := range rowTexts {
		r.writeTableRow(b, row, widths)
	}
}

func (r *renderer) writeTableRow(b *strings.Builder, cells []string, widths []int) {
	b.WriteString(r.wrap(r.theme.TableBorder, "|"))
	for i, w := range widths {
		text := ""
		if i < len(cells) {
			text = cells[i]
		}
		pad := w - ansi.VisibleWidth(text)
		if pad < 0 {
			pad = 0
		}
		b.WriteString(" " + text + strings.Repeat(" ", pad) + " ")
		b.WriteString(r.wrap(r.theme.TableBorder, "|"))
	}
	b.WriteString("\n")
}

func tableSeparator(widths []int) string {
	var b strings.Builder
	b.WriteString("|")
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2))
		b.WriteString("|")
	}
	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (r *renderer) inlines(nodes []*mdast.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(r.inline(n))
	}
	return b.String()
}

func (r *renderer) inline(n *mdast.Node) string {
	switch n.Type {
	case mdast.NodeText:
		return n.Text
	case mdast.NodeStrong:
		return r.wrap(r.theme.Strong, r.inlines(n.Children))
	case mdast.NodeEmphasis:
		return r.wrap(r.theme.Emphasis, r.inlines(n.Children))
	case mdast.NodeStrike:
		return r.wrap(r.theme.Strike, r.inlines(n.Children))
	case mdast.NodeHighlight:
		return r.wrap(r.theme.Highlight, r.inlines(n.Children))
	case mdast.NodeInlineCode:
		return r.wrap(r.theme.InlineCode, n.Text)
	case mdast.NodeLink:
		label := r.inlines(n.Children)
		return r.wrap(r.theme.Link, label) + " (" + n.URL + ")"
	case mdast.NodeImage:
		alt := n.Alt
		if alt == "" {
			alt = n.Text
		}
		return r.wrap(r.theme.Link, "["+alt+"]") + " (" + n.URL + ")"
	case mdast.NodeMathInline:
		return r.wrap(r.theme.InlineCode, n.Text)
	case mdast.NodeFootnoteRef:
		return "[" + n.Text + "]"
	case mdast.NodeHardbreak:
		return "\n"
	case mdast.NodeHTMLInline:
		return n.Text
	default:
		return r.inlines(n.Children)
	}
}
