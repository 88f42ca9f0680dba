package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger; usable before Init with logrus defaults
var Log = logrus.New()

// Init configures the global logger
// Unknown levels fall back to info; format "json" selects the JSON formatter
func Init(level, format string, out io.Writer) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if strings.ToLower(format) == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			DisableColors: out != os.Stdout && out != os.Stderr,
		})
	}

	if out == nil {
		out = os.Stdout
	}
	Log.SetOutput(out)
}

// Discard silences the global logger, used while the terminal owns stdout
func Discard() {
	Log.SetOutput(io.Discard)
}
