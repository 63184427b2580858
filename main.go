package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"streamterm/highlight"
	"streamterm/mdansi"
	"streamterm/mdast"
)

func main() {
	info, err := os.Stdin.Stat()

	if len(os.Args) > 1 {
		if os.Args[1] == "-h" || os.Args[1] == "--help" {
			demo()
			return
		}
		input := strings.Join(os.Args[1:], " ")
		fmt.Print(renderOnce(input))
	} else if err == nil && (info.Mode()&os.ModeCharDevice) == 0 {
		reader := bufio.NewReader(os.Stdin)
		var builder strings.Builder
		for {
			line, err := reader.ReadString('\n')
			builder.WriteString(line)
			if err == io.EOF {
				break
			}
		}
		fmt.Print(renderOnce(builder.String()))
	} else {
		fmt.Fprintln(os.Stderr, "Usage: streamterm <markdown> or pipe input (see cmd/mdcat, cmd/mdstream for more options)")
	}
}

func renderOnce(input string) string {
	root := mdast.ParseDocument(input)
	return mdansi.Render(root, mdansi.DefaultTheme(), true, 0, plainHighlight)
}

func plainHighlight(code, lang string) (string, bool) {
	out := highlight.Plain(code, lang)
	return out.Text, out.Sync
}

func demo() {
	output := renderOnce(`
# Bringing Markdown-Like Syntax To A Streaming Terminal

It should be **easy** and as __natural__ as writing text.

> Keep it simple.

- behind
- all this

` + "```go" + `
fmt.Println("hello")
` + "```" + `
`)
	fmt.Print(output + "\n")
}
