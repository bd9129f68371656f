package events

import (
	"os"

	"github.com/rs/zerolog"
)

var eventLog = zerolog.New(os.Stderr).With().Timestamp().Str("component", "events").Logger()

func logEvent(name string, evt Event) {
	var entry *zerolog.Event
	switch evt.Type {
	case EventError:
		entry = eventLog.Error()
	case EventWarn:
		entry = eventLog.Warn()
	default:
		entry = eventLog.Info()
	}

	entry = entry.Str("event", name).Str("id", evt.ID).Str("type", string(evt.Type))
	if evt.Token != 0 {
		entry = entry.Uint64("token", evt.Token)
	}
	for k, v := range evt.Metadata {
		entry = entry.Str(k, v)
	}
	entry.Msg(evt.Message)
}
