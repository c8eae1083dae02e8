package signupform

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"golang.org/x/text/language"

	"github.com/pthm/signupform/form"
)

// viewData is everything a render needs, captured once per request.
type viewData struct {
	props Props
	snap  form.Snapshot
	tag   language.Tag
}

func (c *SignupForm) view(props Props) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		d := viewData{
			props: props,
			snap:  props.Session.Form.Snapshot(),
			tag:   c.catalog.Locale(ctx),
		}
		h := &htmlWriter{ctx: ctx, w: w}
		h.open("div", templ.Attributes{
			"id":        "signup-form",
			"class":     "signup-form",
			"hx-target": "this",
			"hx-swap":   "outerHTML",
		})
		if d.snap.Submitted {
			c.successView(h, d)
		} else {
			c.formView(h, d)
		}
		h.close("div")
		return h.err
	})
}

func (c *SignupForm) t(d viewData, key string) string {
	return c.catalog.T(d.tag, key)
}

func (c *SignupForm) successView(h *htmlWriter, d viewData) {
	h.open("div", templ.Attributes{"class": "signup-success", "role": "status"})
	h.open("h2", nil)
	h.text(c.t(d, "success.title"))
	h.close("h2")
	h.open("p", nil)
	h.text(c.t(d, "success.message"))
	h.close("p")
	h.open("button", merge(c.Wire("reload", d.props), templ.Attributes{
		"type":  "button",
		"class": "btn btn-secondary",
	}))
	h.text(c.t(d, "success.again"))
	h.close("button")
	h.close("div")
}

func (c *SignupForm) formView(h *htmlWriter, d viewData) {
	h.open("form", merge(c.Wire("submit", d.props), templ.Attributes{
		"novalidate":      true,
		"hx-sync":         "this:drop",
		"hx-disabled-elt": "find button[type=submit]",
		"aria-busy":       boolString(d.snap.Submitting),
	}))

	h.open("h2", nil)
	h.text(c.t(d, "form.title"))
	h.close("h2")

	if d.snap.IsError {
		c.errorList(h, d)
	}

	c.textInput(h, d, form.FieldFirstName, "text", d.snap.State.FirstName)
	c.textInput(h, d, form.FieldLastName, "text", d.snap.State.LastName)
	c.textInput(h, d, form.FieldEmail, "email", d.snap.State.Email)
	c.typeSelect(h, d)
	c.additionalInfo(h, d)
	c.termsCheckbox(h, d)

	label := "form.submit"
	if d.snap.Submitting {
		label = "form.submitting"
	}
	h.open("button", templ.Attributes{
		"type":     "submit",
		"class":    "btn btn-primary",
		"disabled": d.snap.Submitting,
	})
	h.text(c.t(d, label))
	h.close("button")
	h.close("form")
}

// errorList renders the error summary. Client-side entries resolve their
// text from the field; server messages go through the catalog and are
// stripped of markup.
func (c *SignupForm) errorList(h *htmlWriter, d viewData) {
	h.open("div", templ.Attributes{"class": "alert alert-danger", "role": "alert"})
	h.open("strong", nil)
	h.text(c.t(d, d.snap.ErrorHeader))
	h.close("strong")
	h.open("ul", nil)
	for _, e := range d.snap.Errors {
		attrs := templ.Attributes{}
		if e.Field != "" {
			attrs["data-field"] = e.Field
		}
		h.open("li", attrs)
		switch {
		case e.Message == "":
			h.text(c.t(d, "validation."+e.Field))
		default:
			if msg, ok := c.catalog.Lookup(d.tag, e.Message); ok {
				h.text(msg)
			} else {
				h.raw(c.policy.Sanitize(e.Message))
			}
		}
		h.close("li")
	}
	h.close("ul")
	h.close("div")
}

func inputID(f form.Field) string {
	return "signup-" + string(f)
}

func (c *SignupForm) controlClass(d viewData, f form.Field, base string) string {
	if d.snap.Invalid[f] {
		return base + " is-invalid"
	}
	return base
}

func (c *SignupForm) blurAttrs(d viewData, trigger string) templ.Attributes {
	return merge(c.Wire("blur", d.props), templ.Attributes{"hx-trigger": trigger})
}

func (c *SignupForm) label(h *htmlWriter, d viewData, f form.Field) {
	h.open("label", templ.Attributes{"for": inputID(f), "class": "form-label"})
	h.text(c.t(d, "label."+string(f)))
	h.close("label")
}

func (c *SignupForm) textInput(h *htmlWriter, d viewData, f form.Field, typ, value string) {
	h.open("div", templ.Attributes{"class": "mb-3"})
	c.label(h, d, f)
	h.open("input", merge(c.blurAttrs(d, "blur"), templ.Attributes{
		"type":         typ,
		"id":           inputID(f),
		"name":         string(f),
		"value":        value,
		"class":        c.controlClass(d, f, "form-control"),
		"aria-invalid": boolString(d.snap.Invalid[f]),
	}))
	h.close("div")
}

func (c *SignupForm) typeSelect(h *htmlWriter, d viewData) {
	f := form.FieldType
	h.open("div", templ.Attributes{"class": "mb-3"})
	c.label(h, d, f)
	h.open("select", merge(c.blurAttrs(d, "blur, change"), templ.Attributes{
		"id":           inputID(f),
		"name":         string(f),
		"class":        c.controlClass(d, f, "form-select"),
		"aria-invalid": boolString(d.snap.Invalid[f]),
	}))
	h.open("option", templ.Attributes{"value": "", "selected": d.snap.State.Type == ""})
	h.text(c.t(d, "form.typePlaceholder"))
	h.close("option")
	for _, opt := range form.SubscriptionOptions() {
		h.open("option", templ.Attributes{
			"value":    string(opt.Value),
			"selected": d.snap.State.Type == opt.Value,
		})
		if label, ok := c.catalog.Lookup(d.tag, "subscription."+string(opt.Value)); ok {
			h.text(label)
		} else {
			h.text(opt.Label)
		}
		h.close("option")
	}
	h.close("select")
	h.close("div")
}

func (c *SignupForm) additionalInfo(h *htmlWriter, d viewData) {
	f := form.FieldAdditionalInfo
	// The wrapper has no name of its own, so the field travels in hx-vals.
	h.open("div", merge(c.Wire("blur", d.props, map[string]string{"field": string(f)}), templ.Attributes{
		"class":      "mb-3",
		"hx-trigger": "focusout",
	}))
	c.label(h, d, f)
	h.open("textarea", merge(c.Wire("edit", d.props), templ.Attributes{
		"id":           inputID(f),
		"name":         string(f),
		"rows":         "4",
		"class":        c.controlClass(d, f, "form-control"),
		"aria-invalid": boolString(d.snap.Invalid[f]),
		"hx-trigger":   "input changed delay:300ms",
		"hx-sync":      "closest form:abort",
	}))
	h.text(d.snap.State.AdditionalInfo)
	h.close("textarea")

	left := d.snap.Remaining[f]
	class := "form-text"
	if left < 0 {
		class += " text-danger"
	}
	h.open("small", templ.Attributes{"id": inputID(f) + "-left", "class": class})
	h.text(c.catalog.Tf(d.tag, "form.charactersLeft", left))
	h.close("small")
	h.close("div")
}

func (c *SignupForm) termsCheckbox(h *htmlWriter, d viewData) {
	f := form.FieldTerms
	h.open("div", templ.Attributes{"class": "mb-3 form-check"})
	h.open("input", merge(c.blurAttrs(d, "change"), templ.Attributes{
		"type":         "checkbox",
		"id":           inputID(f),
		"name":         string(f),
		"value":        "true",
		"checked":      d.snap.State.Terms,
		"class":        c.controlClass(d, f, "form-check-input"),
		"aria-invalid": boolString(d.snap.Invalid[f]),
	}))
	h.open("label", templ.Attributes{"for": inputID(f), "class": "form-check-label"})
	h.text(c.t(d, "label.terms"))
	h.close("label")
	h.close("div")
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
