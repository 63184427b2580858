// Package surface implements the anchored text surface: the in-memory
// mirror of what is currently on screen, and the minimal-movement ANSI
// patches that transition it to a new state.
package surface

import (
	"strings"
	"unicode/utf8"

	"streamterm/ansi"
)

// AnchorMode selects the origin a surface returns to before every patch.
type AnchorMode int

const (
	// AnchorCursor returns to the cursor position saved at begin() time,
	// using both the DEC and CSI save/restore dialects.
	AnchorCursor AnchorMode = iota
	// AnchorHome returns to absolute screen home (CSI H).
	AnchorHome
)

// Surface owns the text currently believed to be on screen and computes
// the shortest ANSI patch that realises a requested change.
type Surface struct {
	text     string
	anchored bool
	mode     AnchorMode
}

// New creates a Surface anchored in the given mode. The surface starts
// empty and unanchored; the first patch-producing call issues the begin
// prologue.
func New(mode AnchorMode) *Surface {
	return &Surface{mode: mode}
}

// GetText returns the surface's current mirror of the screen.
func (s *Surface) GetText() string {
	return s.text
}

// decorateNewlines inserts an erase-to-end-of-line sequence before every
// newline, so a shorter replacement can't leave remnants of a longer
// previous line ("ghosting").
func decorateNewlines(s string) string {
	return strings.ReplaceAll(s, "\n", ansi.EraseLineEnd+"\n")
}

func (s *Surface) beginPrologue() string {
	s.anchored = true
	if s.mode == AnchorHome {
		return ansi.CursorHome
	}
	return "\r" + ansi.SaveCursor
}

// Begin issues the anchoring prologue without changing the displayed text.
// setText/append/insert/replace call it implicitly on first use; exposed
// for callers that want to anchor before their first write.
func (s *Surface) Begin() string {
	if s.anchored {
		return ""
	}
	return s.beginPrologue()
}

func (s *Surface) originReturn() string {
	if s.mode == AnchorHome {
		return ansi.CursorHome
	}
	return ansi.RestoreCursor
}

// moveTo composes the origin-return plus the relative cursor motion needed
// to reach p, per spec.md §6's composite moveTo formula.
func (s *Surface) moveTo(p ansi.Position) string {
	var b strings.Builder
	b.WriteString(s.originReturn())
	if p.Line > 1 {
		b.WriteString(ansi.CursorDown(p.Line - 1))
		b.WriteString("\r")
	}
	if p.Column > 1 {
		b.WriteString(ansi.CursorForward(p.Column - 1))
	}
	return b.String()
}

// SetText replaces the entire displayed text with next.
func (s *Surface) SetText(next string) string {
	var patch string
	if !s.anchored {
		patch = s.beginPrologue() + decorateNewlines(next)
	} else {
		patch = s.originReturn() + decorateNewlines(next) + ansi.EraseScreenEnd
	}
	s.text = next
	return patch
}

// Append adds delta to the end of the displayed text, assuming the cursor
// is already at the tail (true for every anchored append; for the first,
// unanchored append the begin prologue repositions it there).
func (s *Surface) Append(delta string) string {
	var patch string
	if !s.anchored {
		patch = s.beginPrologue() + delta
	} else {
		patch = delta
	}
	s.text += delta
	return patch
}

// Insert splices ins into the text at position at.
func (s *Surface) Insert(at ansi.Position, ins string) string {
	i := ansi.PosToIndex(s.text, at)
	newText := s.text[:i] + ins + s.text[i:]
	if !s.anchored {
		patch := s.beginPrologue() + decorateNewlines(newText)
		s.text = newText
		return patch
	}
	patch := s.moveTo(at) + decorateNewlines(newText[i:]) + ansi.EraseScreenEnd
	s.text = newText
	return patch
}

// Range is a pair of (line, column) positions, inclusive on both ends. It
// is normalised to a half-open byte-index interval against the surface's
// current text.
type Range struct {
	Start ansi.Position
	End   ansi.Position
}

func (s *Surface) normalize(r Range) (start, end int) {
	first, last := r.Start, r.End
	if last.Line < first.Line || (last.Line == first.Line && last.Column < first.Column) {
		first, last = last, first
	}
	start = ansi.PosToIndex(s.text, first)
	end = ansi.PosToIndex(s.text, last)
	// last is inclusive: step past the visible character it addresses.
	for end < len(s.text) {
		if next, ok := ansi.SkipEscape(s.text, end); ok {
			end = next
			continue
		}
		_, size := utf8.DecodeRuneInString(s.text[end:])
		end += size
		break
	}
	return start, end
}

// Replace substitutes the text spanned by r with replacement.
func (s *Surface) Replace(r Range, replacement string) string {
	start, end := s.normalize(r)
	newText := s.text[:start] + replacement + s.text[end:]
	startPos := ansi.IndexToPos(newText, start)
	patch := s.moveTo(startPos) + decorateNewlines(newText[start:]) + ansi.EraseScreenEnd
	if !s.anchored {
		patch = s.beginPrologue() + decorateNewlines(newText)
	}
	s.text = newText
	return patch
}

// Delete removes the text spanned by r.
func (s *Surface) Delete(r Range) string {
	return s.Replace(r, "")
}

// SetTextFrom assumes next agrees with the current text on every byte
// strictly before from, and emits the narrow patch that rewrites only the
// differing tail.
func (s *Surface) SetTextFrom(next string, from ansi.Position) string {
	i := ansi.PosToIndex(s.text, from)
	var patch string
	if !s.anchored {
		patch = s.beginPrologue() + decorateNewlines(next)
	} else {
		patch = s.moveTo(from) + decorateNewlines(next[i:]) + ansi.EraseScreenEnd
	}
	s.text = next
	return patch
}

// ClipToHeight trims s to its trailing n lines, the viewport clip applied
// before a render ever reaches a Surface. n <= 0 means no clipping.
// Otherwise one trailing newline of s is dropped before splitting and
// the result ends in a newline.
func ClipToHeight(s string, n int) string {
	if n <= 0 {
		return s
	}
	trimmed := strings.TrimSuffix(s, "\n")
	lines := strings.Split(trimmed, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n") + "\n"
}
