package events

import "context"

// Emit publishes a backend event. The default emitter writes events to the
// structured log; a presentation layer can take over delivery with
// SetCustomEmitter.
var Emit = func(ctx context.Context, name string, evt Event) {
	evt = withContextToken(ctx, evt)
	logEvent(name, evt)
}

func withContextToken(ctx context.Context, evt Event) Event {
	if evt.Token == 0 {
		if token := TokenFromContext(ctx); token != 0 {
			evt.Token = token
		}
	}
	return evt
}

// SetCustomEmitter replaces the emitter, e.g. to forward events to a UI.
// Passing nil restores the logging default.
func SetCustomEmitter(f func(ctx context.Context, name string, evt Event)) {
	if f == nil {
		Emit = func(ctx context.Context, name string, evt Event) {
			logEvent(name, withContextToken(ctx, evt))
		}
		return
	}
	Emit = func(ctx context.Context, name string, evt Event) {
		f(ctx, name, withContextToken(ctx, evt))
	}
}
