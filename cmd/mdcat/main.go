// Command mdcat renders a complete Markdown document to ANSI-styled text
// in one shot, with no streaming or patching involved.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"streamterm/highlight"
	"streamterm/mdansi"
	"streamterm/mdast"
)

func main() {
	noColor := flag.Bool("no-color", false, "disable ANSI styling")
	useChroma := flag.Bool("chroma", true, "syntax-highlight code blocks with chroma")
	flag.Parse()

	var src []byte
	var err error
	if path := flag.Arg(0); path != "" {
		src, err = os.ReadFile(path)
	} else {
		src, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		log.Fatalf("mdcat: read input: %v", err)
	}

	root := mdast.ParseDocument(string(src))

	var hl mdansi.HighlightFunc
	if *useChroma {
		coord := highlight.NewCoordinator(highlight.Chroma)
		hl = func(code, lang string) (string, bool) {
			out := coord.Ensure(code, lang)
			if out.Sync {
				return out.Text, true
			}
			res := <-out.Async
			if res.Err != nil {
				return "", false
			}
			return res.Text, true
		}
	}

	out := mdansi.Render(root, mdansi.DefaultTheme(), !*noColor, 0, hl)
	fmt.Print(out)
}
