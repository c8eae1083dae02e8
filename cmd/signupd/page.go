package main

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/pthm/signupform/components/signupform"
	"github.com/pthm/signupform/hxcmp"
	"github.com/pthm/signupform/i18n"
)

const (
	htmxSrc      = "https://unpkg.com/htmx.org@2.0.4"
	bootstrapCSS = "https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css"
)

// page is the document shell around a fresh form.
func page(catalog *i18n.Catalog, comp *signupform.SignupForm) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		tag := catalog.Locale(ctx)
		head := `<!DOCTYPE html><html lang="` + templ.EscapeString(tag.String()) + `"><head>` +
			`<meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">` +
			`<title>` + templ.EscapeString(catalog.T(tag, "form.title")) + `</title>` +
			`<link rel="stylesheet" href="` + bootstrapCSS + `">` +
			`<script src="` + htmxSrc + `"></script>` +
			`</head><body><main class="container py-4">`
		if _, err := io.WriteString(w, head); err != nil {
			return err
		}
		if err := comp.Mount(signupform.Props{}).Render(ctx, w); err != nil {
			return err
		}
		if err := hxcmp.ToastContainer().Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}
