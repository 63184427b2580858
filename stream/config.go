package stream

import (
	"streamterm/highlight"
	"streamterm/mdansi"
	"streamterm/surface"
)

// Strategy selects how a Renderer turns a new full render into a patch.
type Strategy int

const (
	// StrategySmart emits narrow append/setTextFrom patches whenever the
	// new render shares a prefix with what's on screen, falling back to a
	// full setText only when it doesn't.
	StrategySmart Strategy = iota
	// StrategyRedraw always emits a full setText patch.
	StrategyRedraw
)

// ColorMode controls whether Render output carries ANSI styling.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

type config struct {
	anchor               surface.AnchorMode
	strategy             Strategy
	viewportHeight       int
	fullRedrawOnMismatch bool
	streaming            bool
	color                ColorMode
	theme                mdansi.Theme
	highlighter          highlight.Func
}

func defaultConfig() config {
	return config{
		anchor:               surface.AnchorCursor,
		strategy:             StrategySmart,
		fullRedrawOnMismatch: true,
		streaming:            true,
		color:                ColorAuto,
		theme:                mdansi.DefaultTheme(),
		highlighter:          highlight.Plain,
	}
}

// Option configures a Renderer at construction time.
type Option func(*config)

// WithAnchor selects the anchoring mode the Renderer's surface uses.
func WithAnchor(mode surface.AnchorMode) Option {
	return func(c *config) { c.anchor = mode }
}

// WithStrategy selects how new renders become patches.
func WithStrategy(s Strategy) Option {
	return func(c *config) { c.strategy = s }
}

// WithViewportHeight clips rendered output to the last n lines for patch
// purposes; n <= 0 disables clipping. GetFullRenderedText always returns
// the unclipped render regardless of this setting.
func WithViewportHeight(n int) Option {
	return func(c *config) { c.viewportHeight = n }
}

// WithFullRedrawOnMismatch controls whether a render that can't be
// reconciled against the previous one (e.g. after Reset by a caller that
// forgot to clear the surface) forces a full redraw rather than erroring.
func WithFullRedrawOnMismatch(b bool) Option {
	return func(c *config) { c.fullRedrawOnMismatch = b }
}

// WithStreaming toggles the just-closed-fence rewrite: when false, the
// Push that closes a trailing code fence is handled like any other Push
// (no anchored rewrite of that block). A still-open trailing fence is
// tracked and rendered without its closing fence either way.
func WithStreaming(b bool) Option {
	return func(c *config) { c.streaming = b }
}

// WithColor selects ANSI styling behaviour.
func WithColor(m ColorMode) Option {
	return func(c *config) { c.color = m }
}

// WithTheme overrides the ANSI styling palette.
func WithTheme(t mdansi.Theme) Option {
	return func(c *config) { c.theme = t }
}

// WithHighlighter supplies the code-block highlighter. Defaults to
// highlight.Plain (dim, untokenised) when not set.
func WithHighlighter(fn highlight.Func) Option {
	return func(c *config) { c.highlighter = fn }
}
