package hxcmp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"slices"
	"strings"
)

// TestResult is a recorded component response.
type TestResult struct {
	HTML            string
	StatusCode      int
	Headers         http.Header
	TriggeredEvents []string
	Flashes         []Flash
}

// TestRender runs Hydrate and Render without any HTTP mechanics.
//
//	result, err := hxcmp.TestRender(comp, props)
//	if !result.HTMLContains("Sign up") {
//	    t.Fatal("missing title")
//	}
func TestRender[P any](comp Lifecycle[P], props P) (*TestResult, error) {
	return TestRenderWithContext(context.Background(), comp, props)
}

// TestRenderWithContext is TestRender with a caller-supplied context, e.g.
// one carrying a locale.
func TestRenderWithContext[P any](ctx context.Context, comp Lifecycle[P], props P) (*TestResult, error) {
	if err := comp.Hydrate(ctx, &props); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := comp.Render(ctx, props).Render(ctx, &buf); err != nil {
		return nil, err
	}
	return &TestResult{
		HTML:       buf.String(),
		StatusCode: http.StatusOK,
		Headers:    make(http.Header),
	}, nil
}

// TestAction sends an HTMX request through comp's full dispatch path:
//
//	result, err := hxcmp.TestAction(comp, submitURL, "POST", map[string]string{
//	    "email": "ada@example.com",
//	})
func TestAction(comp HXComponent, actionURL, method string, formData map[string]string) (*TestResult, error) {
	return NewTestRequest(method, actionURL).WithFormValues(formData).Execute(comp)
}

// TestGet renders comp through its GET route.
func TestGet(comp HXComponent, url string) (*TestResult, error) {
	return TestAction(comp, url, http.MethodGet, nil)
}

// TestPost posts formData to an action.
func TestPost(comp HXComponent, url string, formData map[string]string) (*TestResult, error) {
	return TestAction(comp, url, http.MethodPost, formData)
}

func (r *TestResult) HTMLContains(substr string) bool {
	return strings.Contains(r.HTML, substr)
}

func (r *TestResult) HTMLContainsAll(substrs ...string) bool {
	for _, s := range substrs {
		if !strings.Contains(r.HTML, s) {
			return false
		}
	}
	return true
}

// HasEvent reports whether HX-Trigger named event exactly.
func (r *TestResult) HasEvent(event string) bool {
	return slices.Contains(r.TriggeredEvents, event)
}

// EventDetail decodes the payload sent with event into v.
func (r *TestResult) EventDetail(event string, v any) error {
	var detail map[string]json.RawMessage
	if err := json.Unmarshal([]byte(r.Headers.Get("HX-Trigger")), &detail); err != nil {
		return fmt.Errorf("HX-Trigger carries no payload: %w", err)
	}
	raw, ok := detail[event]
	if !ok {
		return fmt.Errorf("event %q not triggered", event)
	}
	return json.Unmarshal(raw, v)
}

func (r *TestResult) HasFlash(level, message string) bool {
	return slices.Contains(r.Flashes, Flash{Level: level, Message: message})
}

// WasReloaded reports whether the response forced a full page reload.
func (r *TestResult) WasReloaded() bool {
	return r.Headers.Get("HX-Refresh") == "true"
}

func (r *TestResult) IsOK() bool {
	return r.StatusCode == http.StatusOK
}

func (r *TestResult) HasStatus(code int) bool {
	return r.StatusCode == code
}

func (r *TestResult) GetHeader(key string) string {
	return r.Headers.Get(key)
}

// parseTriggerHeader returns the event names in an HX-Trigger value, which
// is either a comma-separated list or a JSON object keyed by event.
func parseTriggerHeader(trigger string) []string {
	trigger = strings.TrimSpace(trigger)
	if trigger == "" {
		return nil
	}

	if !strings.HasPrefix(trigger, "{") {
		var events []string
		for _, p := range strings.Split(trigger, ",") {
			if p = strings.TrimSpace(p); p != "" {
				events = append(events, p)
			}
		}
		return events
	}

	// Decode token by token to keep the header's key order.
	dec := json.NewDecoder(strings.NewReader(trigger))
	if _, err := dec.Token(); err != nil {
		return nil
	}
	var events []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		key, ok := tok.(string)
		if !ok {
			break
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			break
		}
		events = append(events, key)
	}
	return events
}

var toastPattern = regexp.MustCompile(`data-level="([^"]*)"[^>]*><div class="toast-body">(.*?)</div>`)

// parseFlashesFromHTML extracts the toasts rendered by RenderFlashesOOB.
func parseFlashesFromHTML(doc string) []Flash {
	var flashes []Flash
	for _, m := range toastPattern.FindAllStringSubmatch(doc, -1) {
		flashes = append(flashes, Flash{
			Level:   html.UnescapeString(m[1]),
			Message: html.UnescapeString(m[2]),
		})
	}
	return flashes
}

// TestRequestBuilder builds an HTMX request step by step:
//
//	result, err := hxcmp.NewTestRequest("POST", blurURL).
//	    WithFormData("email", "not-an-email").
//	    WithHeader("HX-Trigger-Name", "email").
//	    Execute(comp)
type TestRequestBuilder struct {
	method string
	url    string
	form   url.Values
	header http.Header
	ctx    context.Context
}

func NewTestRequest(method, url string) *TestRequestBuilder {
	return &TestRequestBuilder{
		method: method,
		url:    url,
		form:   make(map[string][]string),
		header: http.Header{"Hx-Request": {"true"}},
		ctx:    context.Background(),
	}
}

func (b *TestRequestBuilder) WithFormData(key, value string) *TestRequestBuilder {
	b.form.Set(key, value)
	return b
}

func (b *TestRequestBuilder) WithFormValues(data map[string]string) *TestRequestBuilder {
	for k, v := range data {
		b.form.Set(k, v)
	}
	return b
}

// WithHeader sets a request header. An empty value removes it, which is
// how tests drop the default HX-Request header.
func (b *TestRequestBuilder) WithHeader(key, value string) *TestRequestBuilder {
	if value == "" {
		b.header.Del(key)
		return b
	}
	b.header.Set(key, value)
	return b
}

func (b *TestRequestBuilder) WithContext(ctx context.Context) *TestRequestBuilder {
	b.ctx = ctx
	return b
}

// Build returns the request without executing it.
func (b *TestRequestBuilder) Build() *http.Request {
	var body io.Reader = http.NoBody
	if len(b.form) > 0 {
		body = strings.NewReader(b.form.Encode())
	}
	req := httptest.NewRequest(b.method, b.url, body).WithContext(b.ctx)
	for k, v := range b.header {
		req.Header[k] = v
	}
	if len(b.form) > 0 {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return req
}

// Execute sends the request straight to comp.
func (b *TestRequestBuilder) Execute(comp HXComponent) (*TestResult, error) {
	return b.ExecuteHandler(http.HandlerFunc(comp.HXServeHTTP))
}

// ExecuteHandler sends the request to h, such as Registry.Handler().
func (b *TestRequestBuilder) ExecuteHandler(h http.Handler) (*TestResult, error) {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, b.Build())
	return newTestResult(rec), nil
}

func newTestResult(rec *httptest.ResponseRecorder) *TestResult {
	return &TestResult{
		HTML:            rec.Body.String(),
		StatusCode:      rec.Code,
		Headers:         rec.Header(),
		TriggeredEvents: parseTriggerHeader(rec.Header().Get("HX-Trigger")),
		Flashes:         parseFlashesFromHTML(rec.Body.String()),
	}
}
