package stream

import "errors"

// ErrUnresolvableRewritePrefix is raised by Push when strategy is
// StrategySmart, the tail code block just closed, fullRedrawOnMismatch is
// disabled, and either startPos was never recorded or the text before it
// changed since it was recorded.
var ErrUnresolvableRewritePrefix = errors.New("stream: unresolvable rewrite prefix")

// ErrNonAppendWithoutFallback is raised by Push when strategy is
// StrategySmart, the new render does not extend what's on screen, and
// fullRedrawOnMismatch is disabled.
var ErrNonAppendWithoutFallback = errors.New("stream: non-append update without fallback")
