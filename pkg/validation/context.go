package validation

import "sync"

// collector is the shared sink behind a Context and all of its nested views.
type collector struct {
	mu         sync.Mutex
	violations []Violation
}

// Context accumulates violations for one validated object.
// Nested contexts created by AtPath share the same collector but prefix every
// path they report.
type Context struct {
	base string
	sink *collector
}

// NewContext returns an empty context rooted at basePath ("" for none).
func NewContext(basePath string) *Context {
	return &Context{base: basePath, sink: &collector{}}
}

// BasePath returns the path prefix established for this context.
func (c *Context) BasePath() string { return c.base }

// AtPath returns a view of c whose violations are reported under prefix.
func (c *Context) AtPath(prefix string) *Context {
	return &Context{base: Join(c.base, prefix), sink: c.sink}
}

// AddViolation records a violation at path relative to the context base.
// path may use index notation ("[0][slot]"); it is translated to dots.
func (c *Context) AddViolation(path, message string, params map[string]any) {
	v := Violation{
		PropertyPath: TranslatePath(c.base, path),
		Message:      message,
		Params:       params,
	}
	c.sink.mu.Lock()
	c.sink.violations = append(c.sink.violations, v)
	c.sink.mu.Unlock()
}

// Violations returns a copy of everything collected so far, across all views.
func (c *Context) Violations() []Violation {
	c.sink.mu.Lock()
	defer c.sink.mu.Unlock()
	out := make([]Violation, len(c.sink.violations))
	copy(out, c.sink.violations)
	return out
}

// Count returns the number of violations collected so far.
func (c *Context) Count() int {
	c.sink.mu.Lock()
	defer c.sink.mu.Unlock()
	return len(c.sink.violations)
}

// Err returns a *ViolationListError, or nil when nothing was collected.
func (c *Context) Err() error {
	vs := c.Violations()
	if len(vs) == 0 {
		return nil
	}
	return &ViolationListError{Violations: vs}
}
