package hxcmp

import (
	"encoding/json"
	"net/http"

	"github.com/a-h/templ"
)

// Render writes a templ component to the HTTP response.
//
// Use this for full pages; component routes render through their Renderer.
func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(r.Context(), w)
}

// IsHTMX returns true if the request originated from HTMX.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// TriggerName returns the name attribute of the element that triggered the request.
//
// Field-level actions use it to learn which input fired:
//
//	field := hxcmp.TriggerName(r) // "email"
func TriggerName(r *http.Request) string {
	return r.Header.Get("HX-Trigger-Name")
}

// BuildTriggerHeader builds an HX-Trigger header value.
//
//  1. Simple event name: "item-updated" -> "item-updated"
//  2. Event with data: "filter:changed" + {"status": "active"} -> {"filter:changed": {"status": "active"}}
func BuildTriggerHeader(trigger string, triggerData map[string]any) string {
	if trigger == "" {
		return ""
	}
	if triggerData == nil {
		return trigger
	}
	data, _ := json.Marshal(map[string]any{trigger: triggerData})
	return string(data)
}
