package signupform

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// htmlWriter accumulates the first write error so templates can be written
// as straight-line code.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

// open writes a start tag. Attributes come out in key order; true renders
// a bare attribute, false and nil are dropped.
func (h *htmlWriter) open(tag string, a templ.Attributes) {
	h.raw("<" + tag)
	if h.err == nil {
		h.err = templ.RenderAttributes(h.ctx, h.w, a)
	}
	h.raw(">")
}

func (h *htmlWriter) close(tag string) {
	h.raw("</" + tag + ">")
}

// merge copies every attribute set into one map; later sets win.
func merge(sets ...templ.Attributes) templ.Attributes {
	out := templ.Attributes{}
	for _, s := range sets {
		for k, v := range s {
			out[k] = v
		}
	}
	return out
}
