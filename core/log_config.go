package core

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// init configures the global zerolog level from the KOWARI_DEBUG
// environment variable: "off"/"0" disables logging entirely, "full" enables
// debug-level logging, anything else (including unset) defaults to info.
func init() {
	debugMode := strings.TrimSpace(strings.ToLower(os.Getenv("KOWARI_DEBUG")))

	switch debugMode {
	case "off", "0":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case "full":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
