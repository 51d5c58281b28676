package analytics

import (
	"net/http"
	"strings"
)

// DefaultCategory is the event category used when a Binding leaves it empty.
const DefaultCategory = "mobile"

// Binding describes the event recorded for each request.
type Binding struct {
	// Category defaults to DefaultCategory.
	Category string

	// Action defaults to the lowercased request method.
	Action func(r *http.Request) string

	// Label defaults to the request path.
	Label func(r *http.Request) string

	// Value is optional. A zero value is not sent.
	Value func(r *http.Request) int64
}

func (b Binding) event(r *http.Request) Event {
	e := Event{Category: b.Category}
	if e.Category == "" {
		e.Category = DefaultCategory
	}
	if b.Action != nil {
		e.Action = b.Action(r)
	}
	if e.Action == "" {
		e.Action = strings.ToLower(r.Method)
	}
	if b.Label != nil {
		e.Label = b.Label(r)
	} else {
		e.Label = r.URL.Path
	}
	if b.Value != nil {
		e.Value = b.Value(r)
	}
	return e
}

// Middleware tracks every request as an event before passing it on.
// Tracking failures, rate limiting included, never affect the response.
func Middleware(t *Tracker, b Binding) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = t.TrackEvent(r.Context(), b.event(r))
			next.ServeHTTP(w, r)
		})
	}
}
