package observability

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ComponentLogger derives a child of the global logger tagged with device and component.
func ComponentLogger(device, component string) zerolog.Logger {
	return log.Logger.With().Str("device", device).Str("component", component).Logger()
}
