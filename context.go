package onestore

import (
	"fmt"
	"log"
)

// Warning is a recoverable condition surfaced during decoding (spec.md §7,
// taxon 2): unknown file-node-ids, unknown property types, suspect-but-
// recoverable layout, missing optional references, exhausted scan budgets.
type Warning struct {
	Offset  int64
	Message string
}

// Context carries the per-decode configuration threaded through every layer
// of the pipeline: a strict flag, the file size, an optional source path for
// diagnostics, a warning sink, and a once-set deduper for unknown ids
// (spec.md §5). It is the sole place with interior mutability in the
// decoder; it is never shared across concurrent decodes.
type Context struct {
	Strict   bool
	FileSize int64
	Path     string

	Warnings     []Warning
	warnSink     func(Warning)
	warnedOnceID map[string]bool
}

// NewContext builds a Context with the given options applied. The default
// warn sink appends to Warnings; callers that want live notification (e.g.
// the teacher's one-shot log.Printf for an unrecognized record) should pass
// WithWarnSink.
func NewContext(opts ...Option) *Context {
	c := &Context{
		warnedOnceID: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Warn records a recoverable condition. In strict mode, callers are expected
// to have already escalated MUST violations to a *FormatError instead of
// calling Warn; Warn itself never escalates.
func (c *Context) Warn(offset int64, format string, args ...any) {
	w := Warning{Offset: offset, Message: sprintfOrPlain(format, args)}
	c.Warnings = append(c.Warnings, w)
	if c.warnSink != nil {
		c.warnSink(w)
	} else {
		log.Printf("onestore: %s (at byte %#x)", w.Message, w.Offset)
	}
}

// WarnOnce records a recoverable condition at most once per (key) value,
// deduplicating repeated unknown-id warnings (spec.md §4.4, §5).
func (c *Context) WarnOnce(key string, offset int64, format string, args ...any) {
	if c.warnedOnceID[key] {
		return
	}
	c.warnedOnceID[key] = true
	c.Warn(offset, format, args...)
}

func sprintfOrPlain(format string, args []any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// Option configures a Context. Functional options mirror the teacher's
// NewFile(r, config ...FileConfig) idiom (SPEC_FULL.md §A.3) in place of a
// config struct or file.
type Option func(*Context)

// WithStrict upgrades the configurable subset of warnings to format errors
// (spec.md §7).
func WithStrict() Option {
	return func(c *Context) { c.Strict = true }
}

// WithPath attaches a source path used only for diagnostics.
func WithPath(path string) Option {
	return func(c *Context) { c.Path = path }
}

// WithWarnSink installs a callback invoked for every warning, in addition to
// it being recorded in Context.Warnings.
func WithWarnSink(sink func(Warning)) Option {
	return func(c *Context) { c.warnSink = sink }
}
