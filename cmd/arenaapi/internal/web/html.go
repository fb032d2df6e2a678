package web

import (
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// htmlWriter accumulates the first write error so components can emit markup
// without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func newHTMLWriter(w io.Writer) *htmlWriter {
	return &htmlWriter{w: w}
}

func (h *htmlWriter) raw(parts ...string) {
	for _, p := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, p)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

// url writes a sanitised URL for use inside a double-quoted attribute.
func (h *htmlWriter) url(u string) {
	h.raw(templ.EscapeString(string(templ.URL(u))))
}

func (h *htmlWriter) int(n int) {
	h.raw(strconv.Itoa(n))
}

// input writes a labelled form field.
func (h *htmlWriter) input(label, name, kind, value string, required bool) {
	h.raw(`<label>`)
	h.text(label)
	h.raw(`<input type="`, kind, `" name="`, name, `" value="`)
	h.text(value)
	h.raw(`"`)
	if required {
		h.raw(` required`)
	}
	h.raw(`></label>`)
}

func (h *htmlWriter) alert(msg string) {
	if msg == "" {
		return
	}
	h.raw(`<p class="alert" role="alert">`)
	h.text(msg)
	h.raw(`</p>`)
}
