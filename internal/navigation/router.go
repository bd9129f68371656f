package navigation

import (
	"context"
	"fmt"
	"sync"

	"coeating/internal/events"
)

// View enumerates the navigable screens. Navigation used to be driven by
// free-form screen-name strings; the router only accepts these values.
type View string

const (
	ViewHome        View = "home"
	ViewScanner     View = "scanner"
	ViewHistory     View = "history"
	ViewCosmetics   View = "cosmetics"
	ViewPreferences View = "preferences"
)

var allViews = map[View]struct{}{
	ViewHome:        {},
	ViewScanner:     {},
	ViewHistory:     {},
	ViewCosmetics:   {},
	ViewPreferences: {},
}

// Valid reports whether v names a known view.
func (v View) Valid() bool {
	_, ok := allViews[v]
	return ok
}

// Router owns the current view and all transitions between views. Changes
// are published through the event emitter so the presentation layer can
// re-render.
type Router struct {
	mu      sync.Mutex
	current View
}

func NewRouter() *Router {
	return &Router{current: ViewHome}
}

// Current returns the active view.
func (r *Router) Current() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Navigate switches to the given view. Unknown views are rejected;
// navigating to the active view is a no-op.
func (r *Router) Navigate(ctx context.Context, v View) error {
	if !v.Valid() {
		return fmt.Errorf("unknown view: %q", v)
	}

	r.mu.Lock()
	if r.current == v {
		r.mu.Unlock()
		return nil
	}
	from := r.current
	r.current = v
	r.mu.Unlock()

	evt := events.NewInfo(fmt.Sprintf("navigated from %s to %s", from, v))
	evt.Metadata = map[string]string{"from": string(from), "to": string(v)}
	events.Emit(ctx, events.NavChanged, evt)
	return nil
}
