package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger our internal "singleton" wrapper around zerolog allowing us
// to set all loggers to log to file or console all at once
type Logger struct {
	zl        *zerolog.Logger
	component string
}

// unexported "singleton" logger
var logger Logger

// init sets the internal "singleton" logger
func init() {
	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().
		Caller().
		Timestamp().
		Logger()

	logger = Logger{
		zl: &zl,
	}
}

// New returns the internal "singleton" logger
func New() Logger {
	return logger
}

// Scoped returns the "singleton" logger tagging every entry with component
func Scoped(component string) Logger {
	return Logger{
		zl:        logger.zl,
		component: component,
	}
}

// GlobalSetLogFile set all loggers to log to file
func GlobalSetLogFile(f *os.File) {
	GlobalSetOutput(f)
}

// GlobalSetOutput set all loggers to write to w without console formatting
func GlobalSetOutput(w io.Writer) {
	newZl := logger.zl.Output(w)

	*logger.zl = newZl
}

// Info wrapper around zerolog Info
func (l Logger) Info() *zerolog.Event {
	return l.tag(l.zl.Info())
}

// Debug wrapper around zerolog Debug
func (l Logger) Debug() *zerolog.Event {
	return l.tag(l.zl.Debug())
}

// Warn wrapper around zerolog Warn
func (l Logger) Warn() *zerolog.Event {
	return l.tag(l.zl.Warn())
}

// Error wrapper around zerolog Error
func (l Logger) Error() *zerolog.Event {
	return l.tag(l.zl.Error())
}

// Fatal wrapper around zerolog Fatal
func (l Logger) Fatal() *zerolog.Event {
	return l.tag(l.zl.Fatal())
}

// events are nil when their level is disabled
func (l Logger) tag(evt *zerolog.Event) *zerolog.Event {
	if l.component == "" || evt == nil {
		return evt
	}

	return evt.Str("component", l.component)
}
