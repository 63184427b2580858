// Package highlight turns fenced code into ANSI-colored text, either
// synchronously or via an async Outcome the caller can wait on, and
// coordinates concurrent requests so the same (language, code) pair is
// never tokenised twice at once.
package highlight

import (
	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/lexers"
)

// Result is the outcome of a completed async highlight.
type Result struct {
	Text string
	Err  error
}

// Outcome is what a Func returns: either the highlighted text is already
// available (Sync true, Text set), or it will arrive later on Async.
type Outcome struct {
	Text  string
	Sync  bool
	Async <-chan Result
}

// Func highlights code written in lang. Implementations may resolve
// synchronously or hand back a pending Outcome.Async channel.
type Func func(code, lang string) Outcome

const (
	colorKeyword = "\x1b[35m"
	colorName    = "\x1b[37m"
	colorString  = "\x1b[32m"
	colorNumber  = "\x1b[36m"
	colorComment = "\x1b[90m"
	reset        = "\x1b[0m"
)

// Chroma synchronously tokenises code with alecthomas/chroma and maps
// token categories to the same ANSI palette as the fallback highlighter,
// returning one already-closed ANSI string.
func Chroma(code, lang string) Outcome {
	return Outcome{Text: chromaRender(code, lang), Sync: true}
}

func chromaRender(code, lang string) string {
	var lexer chroma.Lexer
	if lang != "" {
		lexer = lexers.Get(lang)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return colorComment + code + reset
	}

	var out []byte
	for _, token := range iterator.Tokens() {
		color, bold := colorFor(token.Type)
		if color != "" {
			out = append(out, color...)
			if bold {
				out = append(out, "\x1b[1m"...)
			}
			out = append(out, token.Value...)
			out = append(out, reset...)
		} else {
			out = append(out, token.Value...)
		}
	}
	return string(out)
}

func colorFor(t chroma.TokenType) (color string, bold bool) {
	switch t.SubCategory() {
	case chroma.LiteralString:
		return colorString, false
	case chroma.LiteralNumber:
		return colorNumber, false
	}
	switch t.Category() {
	case chroma.Keyword:
		return colorKeyword, true
	case chroma.Name:
		return colorName, false
	case chroma.Comment:
		return colorComment, false
	case chroma.Operator, chroma.Punctuation:
		return colorName, false
	default:
		return "", false
	}
}

// Plain is the degraded-environment fallback: it dims the code without
// tokenising it.
func Plain(code, lang string) Outcome {
	return Outcome{Text: colorComment + code + reset, Sync: true}
}
