// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup points the global logger at w. Format "human" gives console output;
// anything else logs JSON. An empty level means info.
func Setup(w io.Writer, level, format string) error {
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		lvl, err = zerolog.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("parsing log level %q: %w", level, err)
		}
	}
	zerolog.SetGlobalLevel(lvl)

	output := w
	if format == "human" {
		output = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	return nil
}
