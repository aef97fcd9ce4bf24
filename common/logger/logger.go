package logger

import (
	"io"
	"log"
	"os"
	"strings"
)

type LogLevel int

const (
	ERROR LogLevel = iota
	WARN
	INFO
	DEBUG
	TRACE
)

const flags = log.Ldate | log.Ltime | log.Lshortfile

var (
	nullWriter = &NullWriter{}
	level      = INFO
	Info       *log.Logger
	Warn       *log.Logger
	Error      *log.Logger
	Debug      *log.Logger
	Trace      *log.Logger
)

func StringToLogLevel(value string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return ERROR
	case "warn", "warning":
		return WARN
	case "info":
		return INFO
	case "debug":
		return DEBUG
	case "trace":
		return TRACE
	}
	log.Printf("Invalid log level: '%s'. Returning INFO", value)
	return INFO
}

func (s LogLevel) String() string {
	switch s {
	case ERROR:
		return "ERROR"
	case WARN:
		return "WARN"
	case INFO:
		return "INFO"
	case DEBUG:
		return "DEBUG"
	case TRACE:
		return "TRACE"
	}
	return "UNKNOWN"
}

type NullWriter struct {
	io.Writer
}

func (s *NullWriter) Write(p []byte) (n int, err error) {
	return len(p), nil
}

func init() {
	Error = log.New(nullWriter, "ERROR: ", flags)
	Warn = log.New(nullWriter, "WARN:  ", flags)
	Info = log.New(nullWriter, "INFO:  ", flags)
	Debug = log.New(nullWriter, "DEBUG: ", flags)
	Trace = log.New(nullWriter, "TRACE: ", flags)
}

// Initialize enables every logger up to the given level. Errors go to
// stderr, everything else to stdout.
func Initialize(logLevel LogLevel) {
	InitializeWithWriters(logLevel, os.Stderr, os.Stdout)
}

func InitializeWithWriters(logLevel LogLevel, errWriter io.Writer, outWriter io.Writer) {
	log.Printf("Initialize loggers: '%s'", logLevel.String())
	level = logLevel

	Error = log.New(writerFor(logLevel >= ERROR, errWriter), "ERROR: ", flags)
	Warn = log.New(writerFor(logLevel >= WARN, outWriter), "WARN:  ", flags)
	Info = log.New(writerFor(logLevel >= INFO, outWriter), "INFO:  ", flags)
	Debug = log.New(writerFor(logLevel >= DEBUG, outWriter), "DEBUG: ", flags)
	Trace = log.New(writerFor(logLevel >= TRACE, outWriter), "TRACE: ", flags)
}

func IsLogLevel(logLevel LogLevel) bool {
	return level >= logLevel
}

func writerFor(enabled bool, writer io.Writer) io.Writer {
	if enabled {
		return writer
	}
	return nullWriter
}
