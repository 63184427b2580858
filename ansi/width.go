package ansi

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// combiningRanges lists the zero-width combining-mark blocks called out
// explicitly by the cell-width rule: U+0300-036F, U+1AB0-1AFF,
// U+1DC0-1DFF, U+20D0-20FF, U+FE20-FE2F.
var combiningRanges = [][2]rune{
	{0x0300, 0x036F},
	{0x1AB0, 0x1AFF},
	{0x1DC0, 0x1DFF},
	{0x20D0, 0x20FF},
	{0xFE20, 0xFE2F},
}

// wideRanges lists the double-width blocks called out explicitly by the
// cell-width rule: CJK and emoji ranges.
var wideRanges = [][2]rune{
	{0x1100, 0x115F},
	{0x2329, 0x232A},
	{0x2E80, 0xA4CF}, // except U+303F, handled specially below
	{0xAC00, 0xD7A3},
	{0xF900, 0xFAFF},
	{0xFE10, 0xFE19},
	{0xFE30, 0xFE6F},
	{0xFF00, 0xFF60},
	{0xFFE0, 0xFFE6},
	{0x1F300, 0x1FAFF},
}

func inRanges(r rune, ranges [][2]rune) bool {
	for _, rg := range ranges {
		if r >= rg[0] && r <= rg[1] {
			return true
		}
	}
	return false
}

func isZeroWidthOverride(r rune) bool {
	switch {
	case r == '\n', r == '\u200D': // line break / zero-width joiner
		return true
	case r < 0x20, (r >= 0x80 && r <= 0x9F): // C0/C1 control
		return true
	case inRanges(r, combiningRanges):
		return true
	}
	return false
}

func isWideOverride(r rune) bool {
	if r == 0x303F {
		return false
	}
	return inRanges(r, wideRanges)
}

// runeCellWidth returns the number of terminal cells r occupies, per the
// explicit override tables above layered on top of go-runewidth's East
// Asian Width classification (used as the default bucket for every code
// point the override tables don't name).
func runeCellWidth(r rune) int {
	switch {
	case isZeroWidthOverride(r):
		return 0
	case isWideOverride(r):
		return 2
	default:
		w := runewidth.RuneWidth(r)
		if w < 0 {
			return 0
		}
		return w
	}
}

// VisibleWidth returns the total terminal cell width of s: ANSI escapes are
// skipped, '\r' is ignored, and each remaining code point contributes 0, 1,
// or 2 cells per runeCellWidth.
func VisibleWidth(s string) int {
	width := 0
	for i := 0; i < len(s); {
		if next, ok := SkipEscape(s, i); ok {
			i = next
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r != '\r' {
			width += runeCellWidth(r)
		}
		i += size
	}
	return width
}
