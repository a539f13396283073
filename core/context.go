package core

// UpdateMethod selects how modified buffer contents reach the GPU.
type UpdateMethod int

const (
	// UpdateMapClassic maps the whole buffer write-only and copies each
	// modified segment slice.
	UpdateMapClassic UpdateMethod = iota
	// UpdateMapRange maps only the buffer's unified modified range with
	// explicit flushing of each segment sub-range.
	UpdateMapRange
)

// Context threads the render state that the original engine kept in
// module-level globals: the modified-buffers registry, the list of vertex
// arrays enabled during the current frame and the VAO recording state.
// One Context per Device, driven from a single goroutine.
type Context struct {
	dev    Device
	log    Logger
	method UpdateMethod

	modified  []*Buffer      // buffers with pending segment updates
	inUse     []*VertexArray // arrays enabled since the last Finish
	recording bool
}

func NewContext(dev Device, log Logger) *Context {
	if log == nil {
		log = NewNopLogger()
	}
	return &Context{dev: dev, log: log}
}

func (c *Context) Device() Device { return c.dev }
func (c *Context) Logger() Logger { return c.log }

func (c *Context) SetUpdateMethod(m UpdateMethod) { c.method = m }
func (c *Context) UpdateMethod() UpdateMethod     { return c.method }

// UpdateModifiedBuffers flushes every registered buffer and empties the
// registry. Buffers whose mapping fails are skipped and stay consistent.
func (c *Context) UpdateModifiedBuffers() {
	for _, b := range c.modified {
		b.registered = false
		if err := b.Update(c); err != nil {
			c.log.Errorf("buffer update skipped: %v", err)
		}
	}
	c.modified = c.modified[:0]
}

func (c *Context) registerModified(b *Buffer) {
	if !b.registered {
		b.registered = true
		c.modified = append(c.modified, b)
	}
}
