package finasync

import (
	"io"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// InitLog sets up the global logger for command line use: human readable
// lines on w, debug level when verbose.
func InitLog(w io.Writer, verbose bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: "02/01 15:04:05"})
}
