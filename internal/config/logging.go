package config

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// NewLogger returns a timestamped logger writing to w. Unknown levels fall
// back to info.
func NewLogger(w io.Writer, level, prefix string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          prefix,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
}
