package web

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/a-h/templ"
)

// AppName is shown in page titles and the shell brand.
const AppName = "Prompt Art Clash"

// ComposeTitle appends the brand to a page title.
func ComposeTitle(title string) string {
	if title == "" {
		return AppName
	}
	return title + " | " + AppName
}

// Layout wraps the children in the document head and the navigation shell.
func Layout(title string, shell Shell) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		children := templ.GetChildren(ctx)
		ctx = templ.ClearChildren(ctx)
		h := newHTMLWriter(w)
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<title>`)
		h.text(ComposeTitle(title))
		h.raw(`</title></head><body data-role="`, shell.Role, `">`)
		writeShell(h, shell)
		h.raw(`<main>`)
		if h.err != nil {
			return h.err
		}
		if err := children.Render(ctx, w); err != nil {
			return err
		}
		h.raw(`</main></body></html>`)
		return h.err
	})
}

// ShellNav renders the navigation bar on its own, for fragment requests.
func ShellNav(shell Shell) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		writeShell(h, shell)
		return h.err
	})
}

func writeShell(h *htmlWriter, shell Shell) {
	h.raw(`<nav class="shell"><a class="brand" href="/">`)
	h.text(AppName)
	h.raw(`</a><ul class="links">`)
	for _, l := range shell.Links {
		writeNavLink(h, l)
	}
	h.raw(`</ul><ul class="account">`)
	for _, l := range shell.Account {
		if l.Href == "/logout" {
			h.raw(`<li><form method="post" action="/logout"><button type="submit">`)
			h.text(l.Label)
			h.raw(`</button></form></li>`)
			continue
		}
		writeNavLink(h, l)
	}
	h.raw(`</ul></nav>`)
}

func writeNavLink(h *htmlWriter, l Link) {
	h.raw(`<li><a href="`)
	h.url(l.Href)
	h.raw(`"`)
	if l.Active {
		h.raw(` class="active" aria-current="page"`)
	}
	h.raw(`>`)
	h.text(l.Label)
	h.raw(`</a></li>`)
}

// Render writes a full page. The body is rendered into a buffer first so a
// component error still produces a clean 500.
func Render(w http.ResponseWriter, r *http.Request, status int, title string, shell Shell, body templ.Component) error {
	if body == nil {
		body = templ.NopComponent
	}
	var buf bytes.Buffer
	ctx := templ.WithChildren(r.Context(), body)
	if err := Layout(title, shell).Render(ctx, &buf); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return err
	}
	if status <= 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
	return nil
}
