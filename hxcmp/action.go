package hxcmp

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/a-h/templ"
)

// ActionBuilder configures action registration (e.g., HTTP method override).
//
// Returned by Component.Action() to allow optional method override:
//
//	c.Action("submit", handler)  // POST by default
//	c.Action("preview", handler).Method(http.MethodGet)
type ActionBuilder struct {
	method *string
}

// Method overrides the default POST method for an action.
func (ab *ActionBuilder) Method(m string) *ActionBuilder {
	*ab.method = m
	return ab
}

// WireAttrs builds the minimal HTMX attributes for a component action.
//
// For GET actions, returns hx-get with props encoded in the URL query string.
// For POST/PUT/DELETE/PATCH, returns hx-post (etc.) with props in hx-vals.
// Optional vals are sent alongside the props; they never replace "p".
//
// All other HTMX attributes (hx-target, hx-swap, hx-trigger, etc.) are
// written by the template.
func WireAttrs(path, method, encoded string, vals ...map[string]string) templ.Attributes {
	attrs := templ.Attributes{}

	params := map[string]string{}
	for _, set := range vals {
		for k, v := range set {
			params[k] = v
		}
	}
	if encoded != "" {
		params["p"] = encoded
	}

	if method == http.MethodGet || method == "" {
		target := path
		if len(params) > 0 {
			q := url.Values{}
			for k, v := range params {
				q.Set(k, v)
			}
			target = path + "?" + q.Encode()
		}
		attrs["hx-get"] = target
		return attrs
	}

	switch method {
	case http.MethodPost:
		attrs["hx-post"] = path
	case http.MethodPut:
		attrs["hx-put"] = path
	case http.MethodPatch:
		attrs["hx-patch"] = path
	case http.MethodDelete:
		attrs["hx-delete"] = path
	}
	if len(params) > 0 {
		data, _ := json.Marshal(params)
		attrs["hx-vals"] = string(data)
	}
	return attrs
}
