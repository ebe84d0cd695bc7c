package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Options struct {
	Level   string
	Format  string
	NoColor bool
	Output  io.Writer
}

// InitDefault sets up a console logger before flags and config are parsed,
// so early failures are still readable.
func InitDefault() {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
	})
}

// Init configures the global logger. A nil opts reads the log.level,
// log.format and log.no_color viper keys.
func Init(opts *Options) {
	if opts == nil {
		opts = &Options{
			Level:   viper.GetString("log.level"),
			Format:  viper.GetString("log.format"),
			NoColor: viper.GetBool("log.no_color"),
		}
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	switch strings.ToLower(opts.Format) {
	case "json":
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	default:
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.Kitchen,
			NoColor:    opts.NoColor,
		})
	}
}
