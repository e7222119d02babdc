package core

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// GetSeed returns a seed for pseudo-random number generation. It reads
// KOWARI_SEED from the environment so a build can be replayed exactly; if
// unset or unparsable it falls back to the current time and logs the
// chosen value so a caller can capture it for later reproducibility.
//
// Callers that need a reproducible index should always pass an explicit
// seed rather than relying on this fallback.
func GetSeed() int64 {
	if s := os.Getenv("KOWARI_SEED"); s != "" {
		if seed, err := strconv.ParseInt(s, 10, 64); err == nil {
			log.Info().Int64("seed", seed).Msg("using seed from KOWARI_SEED")
			return seed
		}
		log.Warn().Str("value", s).Msg("failed to parse KOWARI_SEED, falling back to time-derived seed")
	}
	seed := time.Now().UnixNano()
	log.Info().Int64("seed", seed).Msg("using time-derived seed")
	return seed
}
