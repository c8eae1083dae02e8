package hxcmp

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// Flash levels for toast notifications.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

// Flash is a one-time notification rendered as a toast.
type Flash struct {
	Level   string
	Message string
}

// variant maps a level onto a Bootstrap contextual class.
func (f Flash) variant() string {
	switch f.Level {
	case FlashError:
		return "danger"
	case FlashSuccess, FlashWarning, FlashInfo:
		return f.Level
	}
	return "secondary"
}

// dismissAfter is how long the page script keeps the toast, in ms. Errors
// stay longer.
func (f Flash) dismissAfter() int {
	if f.Level == FlashError {
		return 8000
	}
	return 4000
}

// RenderFlashesOOB renders flashes as an out-of-band swap appending to the
// #toasts container.
func RenderFlashesOOB(flashes []Flash) string {
	if len(flashes) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(`<div id="toasts" hx-swap-oob="beforeend">`)
	for _, f := range flashes {
		role := "status"
		if f.Level == FlashError {
			role = "alert"
		}
		sb.WriteString(`<div class="toast show text-bg-` + f.variant() + `" role="` + role + `"`)
		sb.WriteString(` data-level="` + templ.EscapeString(f.Level) + `"`)
		sb.WriteString(` data-auto-dismiss="` + strconv.Itoa(f.dismissAfter()) + `">`)
		sb.WriteString(`<div class="toast-body">` + templ.EscapeString(f.Message) + `</div>`)
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

// ToastContainer renders the #toasts container. Put it in the page layout.
func ToastContainer() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div id="toasts" class="toast-container position-fixed top-0 end-0 p-3" aria-live="polite"></div>`)
		return err
	})
}
